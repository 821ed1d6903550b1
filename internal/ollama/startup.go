package ollama

import (
	"context"
	"fmt"
	"io"
)

// EnsureReady verifies the Ollama server is reachable and that both the chat
// and embedding models are present locally. It never pulls models itself;
// downloads are the operator's call.
func EnsureReady(ctx context.Context, c *Client, chatModel, embedModel string, out io.Writer) error {
	if !c.IsRunning(ctx) {
		return fmt.Errorf("ollama is not reachable at %s; start it with `ollama serve`", c.baseURL)
	}

	for _, model := range []string{chatModel, embedModel} {
		if !c.HasModel(ctx, model) {
			return fmt.Errorf("model %q is not available locally; fetch it with `ollama pull %s`", model, model)
		}
		fmt.Fprintf(out, "model %s ready\n", model)
	}

	return nil
}
