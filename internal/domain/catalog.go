package domain

import "time"

// Department represents an organizational unit operators belong to.
type Department struct {
	ID   int64  `json:"id_depto"`
	Name string `json:"nombre"`
}

// CatalogEntry is a generic id/name catalog row (estados, prioridades,
// canales). Catalogs are backend-owned; the client fetches them for display.
type CatalogEntry struct {
	ID   int64  `json:"id"`
	Name string `json:"nombre"`
}

// NotificationSummary is the unread-count badge from
// /notificaciones/resumen.
type NotificationSummary struct {
	Unread int `json:"no_leidas"`
	Total  int `json:"total"`
}

// Notification is a dashboard notification row.
type Notification struct {
	ID        int64     `json:"id_notificacion"`
	TicketID  int64     `json:"id_ticket"`
	Title     string    `json:"titulo"`
	Body      string    `json:"mensaje"`
	Read      bool      `json:"leida"`
	CreatedAt time.Time `json:"fecha"`
}

// TicketStats is the server-side KPI aggregate from /tickets/estadisticas.
type TicketStats struct {
	OpenTickets     int            `json:"tickets_abiertos"`
	NewToday        int            `json:"nuevos_hoy"`
	MyTickets       int            `json:"mis_tickets"`
	TotalTickets    int            `json:"total_tickets"`
	ResolvedToday   int            `json:"resueltos_hoy"`
	SatisfactionPct *float64       `json:"satisfaccion_pct"`
	ByStatus        map[string]int `json:"por_estado"`
	ByPriority      map[string]int `json:"por_prioridad"`
	ResolutionHours *float64       `json:"tiempo_resolucion"`
}
