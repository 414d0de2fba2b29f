package svm

// Model is a trained binary classifier. It is immutable once returned by a Trainer
// and safe for concurrent Predict calls.
type Model struct {
	Kernel Kernel  `json:"kernel"`
	C      float64 `json:"c"`
	Gamma  float64 `json:"gamma"`

	// SupportVectors are the training samples with non-zero multipliers.
	SupportVectors [][]float64 `json:"support_vectors"`

	// Coefficients holds label·alpha for each support vector.
	Coefficients []float64 `json:"coefficients"`

	// Rho is the negated bias of the decision function.
	Rho float64 `json:"rho"`

	// Iterations is the number of solver iterations used.
	Iterations int `json:"iterations"`
}

// Predict returns the decision value for x. Positive means the +1 class.
func (m *Model) Predict(x []float64) float64 {
	sum := -m.Rho
	for i, sv := range m.SupportVectors {
		sum += m.Coefficients[i] * m.Kernel.Eval(sv, x, m.Gamma)
	}
	return sum
}

// NumSupportVectors returns the number of support vectors.
func (m *Model) NumSupportVectors() int {
	return len(m.SupportVectors)
}
