package hub

const (
	TypeCatalog     = "catalog"
	TypeReloadError = "reload_error"
	TypeError       = "error"
	TypePong        = "pong"
)

type ServerMessage struct {
	Type string `json:"type"`
}

// CatalogMessage announces the current snapshot. Version increases on every
// successful reload so clients can tell a fresh catalog from a replay.
type CatalogMessage struct {
	Type      string `json:"type"`
	Version   int64  `json:"version"`
	Templates int    `json:"templates"`
	Ts        int64  `json:"ts"`
}

// ReloadErrorMessage reports a reload that failed; the previous catalog is
// still being served.
type ReloadErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Ts      int64  `json:"ts"`
}

type ClientMessage struct {
	Type string `json:"type"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
