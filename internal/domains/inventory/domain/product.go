package domain

// Product is the stocked item whose quantity the decrement handler maintains.
type Product struct {
	ID       int64
	Name     string
	Quantity int32
}

// ApplySale reduces the quantity by the amount sold, clamping at zero.
// Returns true when the subtraction would have gone negative.
func (p *Product) ApplySale(sold int32) (clamped bool) {
	remaining := p.Quantity - sold
	if remaining < 0 {
		p.Quantity = 0
		return true
	}
	p.Quantity = remaining
	return false
}
