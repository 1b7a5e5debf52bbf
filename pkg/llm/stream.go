package llm

import (
	"encoding/json"
	"fmt"
	"io"
)

// DoneFrame terminates every normalized stream.
const DoneFrame = "data: [DONE]\n\n"

type contentFrame struct {
	Content string `json:"content"`
}

type errorFrame struct {
	Error string `json:"error"`
}

// WriteContentFrame writes one normalized delta frame.
func WriteContentFrame(w io.Writer, content string) error {
	payload, err := json.Marshal(contentFrame{Content: content})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", payload)
	return err
}

// WriteErrorFrame writes a mid-stream error frame.
func WriteErrorFrame(w io.Writer, message string) error {
	payload, err := json.Marshal(errorFrame{Error: message})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", payload)
	return err
}

// WriteDoneFrame writes the terminating sentinel.
func WriteDoneFrame(w io.Writer) error {
	_, err := io.WriteString(w, DoneFrame)
	return err
}
