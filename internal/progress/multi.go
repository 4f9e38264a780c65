package progress

import "github.com/ignite/mailblast/internal/dispatch"

// Multi fans one event out to several publishers.
type Multi []dispatch.Publisher

func (m Multi) Publish(e dispatch.Event) {
	for _, p := range m {
		if p != nil {
			p.Publish(e)
		}
	}
}
