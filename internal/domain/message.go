package domain

import "time"

// SenderType indicates who authored a chat message.
type SenderType string

const (
	SenderOperator     SenderType = "Operador"
	SenderExternalUser SenderType = "Usuario"
)

// Attachment stores metadata for files attached to a message. The upload
// mechanics live server-side; the client only displays the references.
type Attachment struct {
	ID        int64  `json:"id_adjunto"`
	FileName  string `json:"nombre_archivo"`
	SizeBytes int64  `json:"tamano_bytes"`
}

// Message is one entry of a ticket's chat thread. IDs are assigned by the
// backend and increase monotonically within a ticket; the client relies on
// that ordering for incremental sync and never re-sorts.
type Message struct {
	ID          int64        `json:"id_msg"`
	TicketID    int64        `json:"id_ticket"`
	SenderType  SenderType   `json:"remitente_tipo"`
	SenderID    int64        `json:"remitente_id"`
	SenderName  string       `json:"remitente_nombre"`
	Content     string       `json:"contenido"`
	SentAt      time.Time    `json:"fecha_envio"`
	Attachments []Attachment `json:"adjuntos"`
}

// FromOperator reports whether the message was sent by the given operator.
func (m *Message) FromOperator(operatorID int64) bool {
	return m.SenderType == SenderOperator && operatorID != 0 && m.SenderID == operatorID
}
