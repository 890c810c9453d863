package embedding

// Output names recognised on ONNX sentence-embedding models.
const (
	outputPooled      = "output"
	outputHiddenState = "last_hidden_state"
)

// poolingOutput picks the model output to read. A stock transformer export exposes
// last_hidden_state, which needs mean pooling; an export with pooling baked in exposes a
// single [1, dims] tensor that is used as-is.
func poolingOutput(names []string) (name string, meanPool bool) {
	for _, n := range names {
		if n == outputHiddenState {
			return n, true
		}
	}
	for _, n := range names {
		if n == outputPooled {
			return n, false
		}
	}
	if len(names) > 0 {
		return names[0], false
	}
	return outputPooled, false
}

// meanPool averages the token vectors of hidden ([seqLen, dims], row-major) whose mask is
// set. It returns a zero vector when no token is masked in.
func meanPool(hidden []float32, mask []int64, dims int) []float32 {
	out := make([]float32, dims)
	var n float32
	for t, m := range mask {
		if m == 0 {
			continue
		}
		row := hidden[t*dims : (t+1)*dims]
		for d, v := range row {
			out[d] += v
		}
		n++
	}
	if n == 0 {
		return out
	}
	for d := range out {
		out[d] /= n
	}
	return out
}
