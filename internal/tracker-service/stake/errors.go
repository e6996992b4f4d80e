package stake

import "fmt"

// IntegrationError representa falha de transporte, resposta de erro da API
// remota ou payload fora do formato esperado.
// StatusCode é 0 quando a falha não tem status HTTP associado.
type IntegrationError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *IntegrationError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("stake api: http %d: %s", e.StatusCode, e.Message)
	}
	return "stake api: " + e.Message
}

func (e *IntegrationError) Unwrap() error { return e.Err }
