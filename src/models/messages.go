package models

// Message types exchanged over the analysis socket.
const (
	TypeStartAnalysis    = "start_analysis"
	TypeCancelAnalysis   = "cancel_analysis"
	TypeAnalysisPV       = "analysis_pv"
	TypeAnalysisComplete = "analysis_complete"
	TypeAnalysisError    = "analysis_error"
)

// ClientMessage is any message a client sends to the bridge.
type ClientMessage struct {
	Type       string          `json:"type"`
	AnalysisID string          `json:"analysisId"`
	Config     *AnalysisConfig `json:"config,omitempty"`
}

// ServerMessage is any message the bridge sends to a client. Only the fields
// belonging to Type are populated.
type ServerMessage struct {
	Type       string     `json:"type"`
	AnalysisID string     `json:"analysisId"`
	PV         *PVResult  `json:"pv,omitempty"`
	PVs        []PVResult `json:"pvs,omitempty"`
	Error      string     `json:"error,omitempty"`
}

func PVMessage(id string, pv PVResult) ServerMessage {
	return ServerMessage{Type: TypeAnalysisPV, AnalysisID: id, PV: &pv}
}

func CompleteMessage(id string, pvs []PVResult) ServerMessage {
	return ServerMessage{Type: TypeAnalysisComplete, AnalysisID: id, PVs: pvs}
}

func ErrorMessage(id string, err error) ServerMessage {
	return ServerMessage{Type: TypeAnalysisError, AnalysisID: id, Error: err.Error()}
}
