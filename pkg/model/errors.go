package model

// LabeledError is the structured error handed back to the shell: a short
// machine code and a human message.
type LabeledError struct {
	Code string
	Msg  string
}

func (e *LabeledError) Error() string {
	if e.Code == "" {
		return e.Msg
	}
	return e.Code + ": " + e.Msg
}
