package systolic

import "systolicsim/src/simulator/systolic/fixed"

// ProcessingElement is one weight-stationary MAC cell. It holds no state of
// its own; its operands live in the grid registers.
type ProcessingElement struct {
	output fixed.Precision
}

// NewProcessingElement builds a PE whose partial sum is kept in output
// precision.
func NewProcessingElement(output fixed.Precision) ProcessingElement {
	return ProcessingElement{output: output}
}

// Run computes psumOut = psumIn + input*weight and forwards the activation.
func (pe ProcessingElement) Run(input, psumIn, weight int64) (inputOut, psumOut int64) {
	return input, pe.output.Quantize(psumIn + input*weight)
}

// Grid is the IC0 x OC0 array of PEs plus the register files around it.
// inputReg has an extra column for the activations leaving the right edge and
// psumReg an extra row for the partial sums leaving the bottom edge.
type Grid struct {
	Rows int
	Cols int

	pe        [][]ProcessingElement
	inputReg  [][]int64
	inputReg2 [][]int64
	psumReg   [][]int64
	psumReg2  [][]int64
}

// NewGrid builds an rows x cols grid. A non-positive dimension is clamped to
// one.
func NewGrid(rows, cols int, output fixed.Precision) *Grid {
	if rows <= 0 {
		rows = 1
	}
	if cols <= 0 {
		cols = 1
	}

	pe := make([][]ProcessingElement, rows)
	for i := range pe {
		pe[i] = make([]ProcessingElement, cols)
		for j := range pe[i] {
			pe[i][j] = NewProcessingElement(output)
		}
	}

	return &Grid{
		Rows:      rows,
		Cols:      cols,
		pe:        pe,
		inputReg:  newRegisters(rows, cols+1),
		inputReg2: newRegisters(rows, cols),
		psumReg:   newRegisters(rows+1, cols),
		psumReg2:  newRegisters(rows, cols),
	}
}

func newRegisters(rows, cols int) [][]int64 {
	regs := make([][]int64, rows)
	for i := range regs {
		regs[i] = make([]int64, cols)
	}
	return regs
}

// SetInput drives the first-column activation of row i.
func (g *Grid) SetInput(i int, value int64) {
	g.inputReg[i][0] = value
}

// SetPsum drives the first-row partial sum of column j.
func (g *Grid) SetPsum(j int, value int64) {
	g.psumReg[0][j] = value
}

// Input reads input_reg[i][j].
func (g *Grid) Input(i, j int) int64 {
	return g.inputReg[i][j]
}

// Psum reads psum_reg[i][j].
func (g *Grid) Psum(i, j int) int64 {
	return g.psumReg[i][j]
}

// Bottom reads the partial sum leaving column j this cycle.
func (g *Grid) Bottom(j int) int64 {
	return g.psumReg[g.Rows][j]
}

// Evaluate runs every PE once. weight(i, j) supplies the stationary weight
// PE (i, j) must use for the operand it holds this cycle.
func (g *Grid) Evaluate(weight func(i, j int) int64) {
	for j := 0; j < g.Cols; j++ {
		for i := 0; i < g.Rows; i++ {
			g.inputReg2[i][j], g.psumReg2[i][j] = g.pe[i][j].Run(g.inputReg[i][j], g.psumReg[i][j], weight(i, j))
		}
	}
}

// Shift moves the PE outputs one step along the diagonal wavefront:
// activations to the right, partial sums down.
func (g *Grid) Shift() {
	for j := 0; j < g.Cols; j++ {
		for i := 0; i < g.Rows; i++ {
			g.inputReg[i][j+1] = g.inputReg2[i][j]
			g.psumReg[i+1][j] = g.psumReg2[i][j]
		}
	}
}

// Reset clears every register file.
func (g *Grid) Reset() {
	for _, regs := range [][][]int64{g.inputReg, g.inputReg2, g.psumReg, g.psumReg2} {
		for _, row := range regs {
			for k := range row {
				row[k] = 0
			}
		}
	}
}
