package pos

import "github.com/angelmondragon/repairpos/internal/cart"

type mutationRecorder interface {
	Mutation(op string, lines int)
}

// MetricsObserver counts cart mutations.
func MetricsObserver(m mutationRecorder) cart.Observer {
	return cart.ObserverFunc(func(c cart.Change) {
		m.Mutation(string(c.Op), len(c.State.Items))
	})
}
