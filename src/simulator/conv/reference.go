package conv

// Reference computes the layer output with direct loops. Every MAC is
// quantized to the output precision in the order the array accumulates:
// ic1, fy, fx, then input lane.
func Reference(layer *Layer) *Tensor {
	p := layer.Params
	ic0 := layer.Array.IC0
	prec := layer.Array.OutputPrecision
	out := layer.NewOutput()

	for oc := 0; oc < layer.OutputChannels(); oc++ {
		for oy := 0; oy < p.OutputHeight(); oy++ {
			for ox := 0; ox < p.OutputWidth(); ox++ {
				var acc int64
				for ic1 := 0; ic1 < p.IC1; ic1++ {
					for fy := 0; fy < p.FY; fy++ {
						for fx := 0; fx < p.FX; fx++ {
							for i := 0; i < ic0; i++ {
								ic := ic1*ic0 + i
								acc = prec.Quantize(acc + layer.Input.At(ic, oy+fy, ox+fx)*layer.Weights.At(oc, ic, fy, fx))
							}
						}
					}
				}
				out.Set(acc, oc, oy, ox)
			}
		}
	}
	return out
}
