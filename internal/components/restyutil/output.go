package restyutil

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
)

// Output receives one formatted http message per response.
type Output interface {
	Write(id string, contents string)
}

type FilesystemOutput struct {
	directory string
}

// NewFilesystemOutput writes every message to its own file under `dir`, the
// directory is created if it does not exist.
func NewFilesystemOutput(dir string) (FilesystemOutput, error) {
	err := os.MkdirAll(dir, 0700)
	if err != nil {
		return FilesystemOutput{}, err
	}
	return FilesystemOutput{directory: dir}, nil
}

func (o FilesystemOutput) Write(id string, contents string) {
	err := os.WriteFile(filepath.Join(o.directory, id), []byte(contents), 0600)
	if err != nil {
		slog.Warn("failed to write message info file", "id", id, "err", err)
	}
}

// MemoryOutput keeps messages in memory.
type MemoryOutput struct {
	mutex    sync.Mutex
	ids      []string
	messages map[string]string
}

func (o *MemoryOutput) Write(id string, contents string) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	if o.messages == nil {
		o.messages = map[string]string{}
	}
	o.ids = append(o.ids, id)
	o.messages[id] = contents
}

// Messages returns the written messages in the order they were written.
func (o *MemoryOutput) Messages() []string {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	out := make([]string, len(o.ids))
	for i, id := range o.ids {
		out[i] = o.messages[id]
	}
	return out
}

// DumpMessages writes every request made by `client` along with its response to
// `output`. The values of `secretFields` in form bodies are redacted.
func DumpMessages(client *resty.Client, output Output, secretFields ...string) {
	var idcounter uint64
	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		id := atomic.AddUint64(&idcounter, 1)
		output.Write(
			fmt.Sprintf("%04d-%s.txt", id, res.Request.Method),
			formatHttpMessage(res, secretFields),
		)
		return nil
	})
}
