package component

// Health tracks hit points. Current never exceeds Max and never drops below 0.
type Health struct {
	Current int `json:"current"`
	Max     int `json:"max"`
}

var HealthComponent = NewComponent[Health]("health")

// NewHealth creates a Health component at full health.
func NewHealth(max int) *Health {
	if max < 0 {
		max = 0
	}
	return &Health{Current: max, Max: max}
}

// Suffer removes up to damage points and returns how many were actually lost.
func (h *Health) Suffer(damage int) int {
	if h == nil || damage <= 0 {
		return 0
	}
	actual := min(damage, h.Current)
	h.Current -= actual
	return actual
}

// Heal restores up to amount points and returns how many were actually gained.
func (h *Health) Heal(amount int) int {
	if h == nil || amount <= 0 {
		return 0
	}
	actual := min(amount, h.Max-h.Current)
	h.Current += actual
	return actual
}

// IsAlive reports whether the figure still has hit points.
func (h *Health) IsAlive() bool {
	return h != nil && h.Current > 0
}
