package matrix

// DeviceMatrix is what an element sees while stamping. Node indices are
// full-system numbers with ground at 0, branch indices are zero based.
type DeviceMatrix interface {
	AddG(i, j int, value complex128)
	AddB(i, k int, value complex128)
	AddC(k, j int, value complex128)
	AddD(k, l int, value complex128)
	AddRHS(i int, value complex128)
	AddBranchRHS(k int, value complex128)
}
