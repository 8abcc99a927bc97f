package npm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/deptree/internal/jsonutil"
)

var (
	// ErrNpmNotFound is returned when the npm executable is not on PATH.
	ErrNpmNotFound = errors.New("npm not found in PATH")

	// ErrNoOutput is returned when npm printed nothing on stdout.
	ErrNoOutput = errors.New("npm returned no JSON output")
)

// LsRunner runs "npm ls" to obtain npm's view of an installed tree.
type LsRunner struct {
	// Binary is the npm executable; "npm" when empty.
	Binary string
	// Dir is the project directory; the current directory when empty.
	Dir    string
	Logger *log.Logger
}

// ReferenceOrder runs npm ls for pkg limited to depth and returns the
// flattened ordering. A non-zero exit is tolerated as long as npm printed
// JSON (npm ls exits 1 for extraneous or missing packages).
func (r *LsRunner) ReferenceOrder(ctx context.Context, pkg string, depth int) ([]string, error) {
	out, err := r.run(ctx, pkg, depth)
	if err != nil {
		return nil, err
	}
	return ParseLs(out, pkg)
}

func (r *LsRunner) run(ctx context.Context, pkg string, depth int) ([]byte, error) {
	bin := r.Binary
	if bin == "" {
		bin = "npm"
	}
	path, err := exec.LookPath(bin)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNpmNotFound, err)
	}

	args := []string{"ls", pkg, "--json", "--depth=" + strconv.Itoa(depth)}
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Dir = r.Dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger := r.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger.Debug("running npm", "args", strings.Join(args, " "), "dir", r.Dir)

	runErr := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	out := bytes.TrimSpace(stdout.Bytes())
	if len(out) == 0 {
		msg := strings.TrimSpace(stderr.String())
		if runErr != nil && msg == "" {
			msg = runErr.Error()
		}
		if msg == "" {
			return nil, ErrNoOutput
		}
		return nil, fmt.Errorf("%w: %s", ErrNoOutput, msg)
	}
	if runErr != nil {
		logger.Debug("npm ls exited with error, using its output", "err", runErr)
	}
	return out, nil
}

// lsNode is one entry of the npm ls JSON tree.
type lsNode struct {
	Dependencies lsChildren `json:"dependencies"`
}

type lsChild struct {
	name string
	node lsNode
}

// lsChildren keeps the document order of a "dependencies" object.
type lsChildren []lsChild

func (c *lsChildren) UnmarshalJSON(data []byte) error {
	var out lsChildren
	err := jsonutil.EachField(data, func(key string, value json.RawMessage) error {
		var n lsNode
		// entries such as {"missing": true} or non-objects are leaves
		_ = json.Unmarshal(value, &n)
		out = append(out, lsChild{name: key, node: n})
		return nil
	})
	if err != nil {
		return err
	}
	*c = out
	return nil
}

// ParseLs flattens npm ls JSON into a reference ordering.
//
// If root appears among the top-level dependencies only its subtree is
// walked; otherwise every top-level entry is. Each name is emitted once,
// after all its children (post-order), and the sequence is reversed, so
// the ordering is root-first like [depgraph.LoadOrder]. A JSON document that
// is not an object yields an empty ordering.
//
// [depgraph.LoadOrder]: github.com/matzehuels/deptree/pkg/depgraph.LoadOrder
func ParseLs(data []byte, root string) ([]string, error) {
	var doc lsNode
	if err := json.Unmarshal(data, &doc); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) || errors.Is(err, jsonutil.ErrNotObject) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("parse npm ls output: %w", err)
	}

	starts := doc.Dependencies
	if i := slices.IndexFunc(starts, func(c lsChild) bool { return c.name == root }); i >= 0 {
		starts = starts[i : i+1]
	}

	type frame struct {
		child lsChild
		next  int
	}
	seen := make(map[string]bool)
	order := []string{}
	for _, start := range starts {
		if seen[start.name] {
			continue
		}
		seen[start.name] = true
		stack := []*frame{{child: start}}
		for len(stack) > 0 {
			top := stack[len(stack)-1]
			kids := top.child.node.Dependencies
			if top.next < len(kids) {
				next := kids[top.next]
				top.next++
				if !seen[next.name] {
					seen[next.name] = true
					stack = append(stack, &frame{child: next})
				}
				continue
			}
			order = append(order, top.child.name)
			stack = stack[:len(stack)-1]
		}
	}

	slices.Reverse(order)
	return order, nil
}
