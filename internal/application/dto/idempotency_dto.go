package dto

// CachedResponse respuesta HTTP guardada para una Idempotency-Key.
type CachedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}
