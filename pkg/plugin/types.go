package plugin

// Problem is a labelled training set. Labels are +1 or -1.
type Problem struct {
	Samples [][]float64 `json:"samples"`
	Labels  []float64   `json:"labels"`
}

// Params are the C-SVC training parameters.
type Params struct {
	Kernel string  `json:"kernel"`
	C      float64 `json:"c"`
	Gamma  float64 `json:"gamma"`
}

// Model is a trained decision function:
// f(x) = sum(Coefficients[i] * K(SupportVectors[i], x)) - Rho.
type Model struct {
	Kernel         string      `json:"kernel"`
	C              float64     `json:"c"`
	Gamma          float64     `json:"gamma"`
	SupportVectors [][]float64 `json:"support_vectors"`
	Coefficients   []float64   `json:"coefficients"`
	Rho            float64     `json:"rho"`
	Iterations     int         `json:"iterations"`
}

// TrainRequest is the argument of the Train RPC.
type TrainRequest struct {
	Problem Problem
	Params  Params
}

// TrainResponse is the reply of the Train RPC. Failures travel in Error and
// Code so that hosts can tell bad input from a broken plugin.
type TrainResponse struct {
	Model *Model
	Error string
	Code  ErrorCode
}

// PluginInfo contains metadata about a plugin.
type PluginInfo struct {
	Name            string   `json:"name"`
	Version         string   `json:"version"`
	ProtocolVersion string   `json:"protocol_version"`
	Description     string   `json:"description"`
	Kernels         []string `json:"kernels"`
}
