package resolve

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/matzehuels/deptree/internal/jsonutil"
)

// ManifestSource fetches registry manifests. Implementations report any
// failure (not found, network, malformed payload) as an error; the
// [Resolver] treats every error as "absent".
type ManifestSource interface {
	FetchManifest(ctx context.Context, name string) (*Manifest, error)
}

// Manifest is the registry metadata the resolver needs: the published
// versions with their declared dependencies, and the dist-tags.
type Manifest struct {
	Name     string             `json:"name"`
	DistTags map[string]string  `json:"dist-tags,omitempty"`
	Versions map[string]Version `json:"versions"`
}

// Version holds one published version's declared runtime dependencies.
type Version struct {
	Dependencies Dependencies `json:"dependencies,omitempty"`
}

// Dependency is one declared dependency edge: a package name and the raw
// version range the declaring package asked for.
type Dependency struct {
	Name string
	Spec string
}

// Dependencies is an ordered name -> spec mapping. It decodes from and
// encodes to a JSON object, preserving member order.
type Dependencies []Dependency

// Names returns the dependency names in declared order.
func (d Dependencies) Names() []string {
	names := make([]string, len(d))
	for i, dep := range d {
		names[i] = dep.Name
	}
	return names
}

// Specs returns the version specs in declared order.
func (d Dependencies) Specs() []string {
	specs := make([]string, len(d))
	for i, dep := range d {
		specs[i] = dep.Spec
	}
	return specs
}

// UnmarshalJSON decodes a JSON object of name -> spec in document order.
// Non-string specs (which some old manifests contain) decode as "".
func (d *Dependencies) UnmarshalJSON(data []byte) error {
	var out Dependencies
	err := jsonutil.EachField(data, func(key string, value json.RawMessage) error {
		var spec string
		_ = json.Unmarshal(value, &spec)
		out = append(out, Dependency{Name: key, Spec: spec})
		return nil
	})
	if err != nil {
		return err
	}
	*d = out
	return nil
}

// MarshalJSON encodes the mapping as a JSON object in declared order.
func (d Dependencies) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, dep := range d {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(dep.Name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(dep.Spec)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
