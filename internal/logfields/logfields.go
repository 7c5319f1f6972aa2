// Package logfields defines canonical slog field names so keys do not drift
// across packages.
package logfields

import "log/slog"

const (
	KeyTask       = "task"
	KeyRepo       = "repository"
	KeyBranch     = "branch"
	KeyStage      = "stage"
	KeyFile       = "file"
	KeyRound      = "round"
	KeyReportID   = "report_id"
	KeyDurationMS = "duration_ms"
	KeyMethod     = "method"
	KeyPath       = "path"
	KeyStatus     = "status"
	KeyUserAgent  = "user_agent"
	KeyRemoteAddr = "remote_addr"
	KeyURL        = "url"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Task(t string) slog.Attr         { return slog.String(KeyTask, t) }
func Repository(r string) slog.Attr   { return slog.String(KeyRepo, r) }
func Branch(b string) slog.Attr       { return slog.String(KeyBranch, b) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func File(f string) slog.Attr         { return slog.String(KeyFile, f) }
func Round(n int) slog.Attr           { return slog.Int(KeyRound, n) }
func ReportID(id string) slog.Attr    { return slog.String(KeyReportID, id) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Method(m string) slog.Attr       { return slog.String(KeyMethod, m) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Status(code int) slog.Attr       { return slog.Int(KeyStatus, code) }
func UserAgent(ua string) slog.Attr   { return slog.String(KeyUserAgent, ua) }
func RemoteAddr(a string) slog.Attr   { return slog.String(KeyRemoteAddr, a) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
