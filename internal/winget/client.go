package winget

import (
	"regexp"
	"time"

	"github.com/upkeep-win/upkeep/internal/logging"
)

var log = logging.L("winget")

// validPackageID matches valid winget package identifiers
// (e.g. "Mozilla.Firefox", "OpenJS.NodeJS").
var validPackageID = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._\-]{0,255}$`)

// Client drives the winget CLI for listing and running upgrades.
type Client struct {
	exec   ExecFunc
	bin    string
	logDir string
	now    func() time.Time
}

// NewClient creates a Client. bin defaults to "winget" and logDir to the
// OS temp directory when empty.
func NewClient(exec ExecFunc, bin, logDir string) *Client {
	if exec == nil {
		exec = DefaultExec
	}
	if bin == "" {
		bin = "winget"
	}
	return &Client{
		exec:   exec,
		bin:    bin,
		logDir: logDir,
		now:    time.Now,
	}
}
