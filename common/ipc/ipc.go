package ipc

// Reports printed by tool mode when --json is set

type (
	// A mode an output supports
	OutputMode struct {
		// Mode height in pixel
		Height int `json:"height"`
		// Mode width in pixel
		Width int `json:"width"`
		// Refresh rate of the mode in millihertz
		RefreshRate int `json:"refresh_rate"`
		// Picture aspect ratio as reported by wlroots
		AspectRatio int  `json:"aspect_ratio"`
		Preferred   bool `json:"preferred"`
	}

	// Response to an outputs or modes request
	OutputResponse struct {
		// List of all outputs. Only contains target output if specified
		Outputs []string `json:"outputs"`
		// A list of modes per output. Only set if modes were asked for
		OutputModes map[string][]OutputMode `json:"output_modes,omitempty"`
		// Nr of outputs found
		OutputsFound int `json:"outputs_found"`
	}
)

// NewOutputResponse builds a response over the given outputs.
// modes may be nil if no modes were requested
func NewOutputResponse(outputs []string, modes map[string][]OutputMode) OutputResponse {
	if outputs == nil {
		outputs = []string{}
	}
	return OutputResponse{
		Outputs:      outputs,
		OutputModes:  modes,
		OutputsFound: len(outputs),
	}
}
