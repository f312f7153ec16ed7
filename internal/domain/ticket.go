package domain

import (
	"strconv"
	"strings"
	"time"
)

// StatusID mirrors the backend estado catalog. The numeric mapping is a
// backend contract; the client never derives or invents it.
type StatusID int

const (
	StatusNew        StatusID = 1
	StatusInProgress StatusID = 2
	StatusResolved   StatusID = 3
	StatusClosed     StatusID = 4
	StatusPending    StatusID = 5
	StatusUnanswered StatusID = 6
)

// IsClosed reports whether the status blocks further replies.
func (s StatusID) IsClosed() bool {
	return s == StatusClosed
}

// IsOpen reports whether the ticket counts as open for dashboard KPIs.
func (s StatusID) IsOpen() bool {
	return s == StatusNew || s == StatusInProgress
}

func (s StatusID) String() string {
	switch s {
	case StatusNew:
		return "Nuevo"
	case StatusInProgress:
		return "En Proceso"
	case StatusResolved:
		return "Resuelto"
	case StatusClosed:
		return "Cerrado"
	case StatusPending:
		return "Pendiente"
	case StatusUnanswered:
		return "Sin Responder"
	default:
		return "Sin estado"
	}
}

// ParseStatus maps textual or numeric estado names to a StatusID.
// Unknown names return 0 and false.
func ParseStatus(name string) (StatusID, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.ReplaceAll(key, "_", " ")
	key = strings.ReplaceAll(key, "-", " ")
	if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= 6 {
		return StatusID(n), true
	}
	switch key {
	case "nuevo":
		return StatusNew, true
	case "en proceso", "en progreso":
		return StatusInProgress, true
	case "resuelto":
		return StatusResolved, true
	case "cerrado":
		return StatusClosed, true
	case "pendiente":
		return StatusPending, true
	case "sin responder", "sin respuesta":
		return StatusUnanswered, true
	}
	return 0, false
}

// PriorityID mirrors the backend prioridad catalog.
type PriorityID int

const (
	PriorityUrgent PriorityID = 1
	PriorityHigh   PriorityID = 2
	PriorityMedium PriorityID = 3
	PriorityLow    PriorityID = 4
)

func (p PriorityID) String() string {
	switch p {
	case PriorityUrgent:
		return "Urgente"
	case PriorityHigh:
		return "Alta"
	case PriorityMedium:
		return "Media"
	case PriorityLow:
		return "Baja"
	default:
		return "Sin prioridad"
	}
}

// ParsePriority accepts numeric and textual priority forms and falls back
// to Medium, matching the form handling of the original dashboard.
func ParsePriority(name string) PriorityID {
	key := strings.ToLower(strings.TrimSpace(name))
	if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= 4 {
		return PriorityID(n)
	}
	switch key {
	case "urgente", "critica", "crítica":
		return PriorityUrgent
	case "alta":
		return PriorityHigh
	case "media", "normal":
		return PriorityMedium
	case "baja":
		return PriorityLow
	}
	return PriorityMedium
}

// RequesterInfo carries the external end-user display data attached to a
// ticket, when the ticket was raised by someone outside the operator pool.
type RequesterInfo struct {
	Name  string `json:"nombre"`
	Email string `json:"email"`
}

// Ticket is the client-side snapshot of a support ticket as served by the
// backend. Ownership identifiers are pointers: nil means unassigned, or
// raised by an external end user in the sender's case.
type Ticket struct {
	ID                int64          `json:"id_ticket"`
	Title             string         `json:"titulo"`
	Description       string         `json:"descripcion"`
	OwnerOperatorID   *int64         `json:"id_operador"`
	SenderOperatorID  *int64         `json:"id_operador_emisor"`
	DepartmentID      *int64         `json:"id_depto"`
	OwnerDepartmentID *int64         `json:"id_depto_owner"`
	Status            StatusID       `json:"id_estado"`
	Priority          PriorityID     `json:"id_prioridad"`
	ChannelID         int            `json:"id_canal"`
	StatusName        string         `json:"estado"`
	PriorityName      string         `json:"prioridad"`
	OwnerName         string         `json:"operador_nombre"`
	OwnerAccepted     bool           `json:"operador_aceptado"`
	SenderName        string         `json:"emisor_nombre"`
	Requester         *RequesterInfo `json:"usuario"`
	CreatedAt         time.Time      `json:"fecha_ini"`
	LastActivityAt    *time.Time     `json:"ultima_actividad"`
	Messages          []Message      `json:"mensajes"`
}

// Unassigned reports whether no operator currently owns the ticket.
func (t *Ticket) Unassigned() bool {
	return t.OwnerOperatorID == nil || *t.OwnerOperatorID == 0
}

// ScopeDepartment returns the department used for visibility scoping,
// falling back to the legacy owner-department field.
func (t *Ticket) ScopeDepartment() (int64, bool) {
	if t.DepartmentID != nil && *t.DepartmentID != 0 {
		return *t.DepartmentID, true
	}
	if t.OwnerDepartmentID != nil && *t.OwnerDepartmentID != 0 {
		return *t.OwnerDepartmentID, true
	}
	return 0, false
}
