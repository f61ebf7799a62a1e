package steps

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/hashmap-kz/pseudoflow-operator/pkg/apis/v1alpha1"
	"github.com/hashmap-kz/pseudoflow-operator/pkg/dispatch"
	"github.com/hashmap-kz/pseudoflow-operator/pkg/errs"
	"github.com/hashmap-kz/pseudoflow-operator/pkg/flowcontext"
	"github.com/hashmap-kz/pseudoflow-operator/pkg/kube"
)

func init() {
	dispatch.Register("include", handleInclude)
}

// includeHTTPClient fetches http(s) include sources with a fixed 20s
// timeout and no auth, exactly as spec.md §6 describes.
var includeHTTPClient = &http.Client{Timeout: 20 * time.Second}

// handleInclude reads manifests from `source` — an http(s) URL (fetched
// with includeHTTPClient) or a local filesystem path — and applies them.
// Grounded on steps/include.py.
func handleInclude(ctx context.Context, step v1alpha1.Step, fctx *flowcontext.Context) error {
	src, err := requireString(step, "source")
	if err != nil {
		return err
	}

	var data []byte
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		data, err = fetchRemote(ctx, src)
	} else {
		data, err = os.ReadFile(src)
	}
	if err != nil {
		return err
	}

	docs, err := kube.DecodeManifests(data)
	if err != nil {
		return err
	}
	return fctx.APIs.ApplyManifests(ctx, docs, fctx.Namespace)
}

func fetchRemote(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &errs.RemoteFetchError{Source: url, Cause: err}
	}
	resp, err := includeHTTPClient.Do(req)
	if err != nil {
		return nil, &errs.RemoteFetchError{Source: url, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, &errs.RemoteFetchError{Source: url, Cause: fmt.Errorf("status %d", resp.StatusCode)}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &errs.RemoteFetchError{Source: url, Cause: err}
	}
	return body, nil
}
