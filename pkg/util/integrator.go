package util

// bdfOrder holds one row of the backward-difference table in the form
// x(t) = sum(alpha[i]*x(t-(i+1)dt)) + beta*dt*x'(t).
type bdfOrder struct {
	alpha []float64
	beta  float64
}

var bdfTable = [...]bdfOrder{
	{alpha: []float64{1}, beta: 1},
	{alpha: []float64{4. / 3, -1. / 3}, beta: 2. / 3},
	{alpha: []float64{18. / 11, -9. / 11, 2. / 11}, beta: 6. / 11},
	{alpha: []float64{48. / 25, -36. / 25, 16. / 25, -3. / 25}, beta: 12. / 25},
	{alpha: []float64{300. / 137, -300. / 137, 200. / 137, -75. / 137, 12. / 137}, beta: 60. / 137},
	{alpha: []float64{360. / 147, -450. / 147, 400. / 147, -225. / 147, 72. / 147, -10. / 147}, beta: 60. / 147},
}

// MaxBDFOrder is the highest order in the table.
const MaxBDFOrder = len(bdfTable)

// GetBDFcoeffs returns the derivative weights of the given order for step
// dt: x'(t) ~ c[0]*x(t) + c[1]*x(t-dt) + ... Orders outside the table fall
// back to backward Euler, which is what the companion models use.
func GetBDFcoeffs(order int, dt float64) []float64 {
	if order < 1 || order > MaxBDFOrder {
		order = 1
	}

	row := bdfTable[order-1]
	scale := 1 / (row.beta * dt)

	coeffs := make([]float64, 0, order+1)
	coeffs = append(coeffs, scale)
	for _, a := range row.alpha {
		coeffs = append(coeffs, -a*scale)
	}
	return coeffs
}
