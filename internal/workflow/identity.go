package workflow

import (
	"github.com/lifeos/sunday/internal/ui"
)

// runIdentity shows the local identity, creating it on first use, or renames it.
func (a *App) runIdentity() error {
	if name := a.opts.Identity.Rename; name != "" {
		id, err := a.identity.Rename(name)
		if err != nil {
			return err
		}
		ui.Status("Renamed", "you now publish as "+ui.Handle(id.Handle))
		a.result("%s", id.Npub())
		return nil
	}

	id, err := a.identity.GetOrCreate()
	if err != nil {
		return err
	}
	ui.Status("Identity", ui.Handle(id.Handle))
	ui.Detail("Hex", id.PublicKey)
	a.result("%s", id.Npub())
	return nil
}
