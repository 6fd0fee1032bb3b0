package backup

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/daylog/internal/gist"
	"github.com/alexanderramin/daylog/internal/repository"
)

var (
	// ErrNotConnected indicates no credential and document are configured.
	ErrNotConnected = errors.New("not connected")

	// ErrAuth indicates the remote rejected the credential during the
	// handshake.
	ErrAuth = errors.New("authentication failed")

	// ErrDecode indicates a downloaded backup could not be decoded. Local
	// state is never touched when this is returned.
	ErrDecode = errors.New("backup could not be decoded")

	// ErrSyncInProgress indicates another sync operation is running.
	ErrSyncInProgress = errors.New("sync already in progress")

	// ErrDownloadDeclined indicates the overwrite confirmation was refused.
	ErrDownloadDeclined = errors.New("download declined")
)

// Message turns a sync error into a short sentence for people.
func Message(err error) string {
	var statusErr *gist.StatusError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrSyncInProgress):
		return "A sync is already running; try again when it finishes."
	case errors.Is(err, ErrNotConnected):
		return "Not connected. Run 'daylog sync connect' first."
	case errors.Is(err, ErrAuth):
		return "The access token was rejected."
	case errors.Is(err, ErrDecode):
		return "Restore failed: the backup could not be decoded. Local data is unchanged."
	case errors.Is(err, ErrDownloadDeclined):
		return "Download cancelled. Local data is unchanged."
	case errors.Is(err, repository.ErrQuotaExceeded):
		return "Local storage is full."
	case errors.As(err, &statusErr):
		return fmt.Sprintf("The server answered HTTP %d.", statusErr.Code)
	case errors.Is(err, gist.ErrNetwork):
		return "Could not reach the server. Check your connection."
	default:
		return err.Error()
	}
}
