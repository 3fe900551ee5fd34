package address

import (
	"encoding/json"
	"fmt"
	"strings"
)

// UpstreamError é uma resposta não-2xx do serviço de endereços.
type UpstreamError struct {
	Op         string
	StatusCode int
	Body       []byte
}

func (e *UpstreamError) Error() string {
	msg := strings.TrimSpace(string(e.Body))
	if len(msg) > 200 {
		msg = msg[:200] + "..."
	}
	if msg == "" {
		return fmt.Sprintf("address service: %s: status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("address service: %s: status %d: %s", e.Op, e.StatusCode, msg)
}

// BodyJSON devolve o corpo como JSON bruto quando válido, ou como string JSON.
func (e *UpstreamError) BodyJSON() json.RawMessage {
	if len(e.Body) > 0 && json.Valid(e.Body) {
		return json.RawMessage(e.Body)
	}
	b, _ := json.Marshal(string(e.Body))
	return b
}

// UnavailableError cobre falhas de transporte (conexão recusada, timeout).
type UnavailableError struct {
	Op  string
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("address service unavailable: %s: %v", e.Op, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }
