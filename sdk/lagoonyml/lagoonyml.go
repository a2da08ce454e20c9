// Package lagoonyml edits .lagoon.yml files, keeping comments and key order.
package lagoonyml

import (
	"bytes"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ovh/lagoonctl/sdk"
	"github.com/ovh/lagoonctl/sdk/reconcile"
)

// File is a parsed .lagoon.yml.
type File struct {
	root yaml.Node
}

// Parse reads a .lagoon.yml document.
func Parse(btes []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(btes, &f.root); err != nil {
		return nil, sdk.NewError(sdk.ErrInvalidData, err)
	}
	if f.root.Kind == 0 {
		f.root = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}}
	}
	if len(f.root.Content) == 0 || f.root.Content[0].Kind != yaml.MappingNode {
		return nil, sdk.NewErrorFrom(sdk.ErrInvalidData, "the document root must be a mapping")
	}
	return &f, nil
}

// ReadFile parses the file at path.
func ReadFile(path string) (*File, error) {
	btes, err := os.ReadFile(path)
	if err != nil {
		return nil, sdk.WithStack(err)
	}
	return Parse(btes)
}

// Bytes encodes the document with a two spaces indent.
func (f *File) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&f.root); err != nil {
		return nil, sdk.WithStack(err)
	}
	if err := enc.Close(); err != nil {
		return nil, sdk.WithStack(err)
	}
	return buf.Bytes(), nil
}

// WriteFile writes the document to path through a temporary file renamed
// over it, keeping the mode of the original file.
func (f *File) WriteFile(path string) error {
	btes, err := f.Bytes()
	if err != nil {
		return err
	}
	mode := os.FileMode(0644)
	if fi, err := os.Stat(path); err == nil {
		mode = fi.Mode().Perm()
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".lagoon.yml.*")
	if err != nil {
		return sdk.WithStack(err)
	}
	defer os.Remove(tmp.Name()) // nolint
	if _, err := tmp.Write(btes); err != nil {
		tmp.Close() // nolint
		return sdk.WithStack(err)
	}
	if err := tmp.Close(); err != nil {
		return sdk.WithStack(err)
	}
	if err := os.Chmod(tmp.Name(), mode); err != nil {
		return sdk.WithStack(err)
	}
	return sdk.WithStack(os.Rename(tmp.Name(), path))
}

// CronJobs returns the cron jobs of an environment.
func (f *File) CronJobs(env string) ([]reconcile.CronJob, error) {
	seq := f.cronJobsNode(env, false)
	if seq == nil {
		return nil, nil
	}
	var jobs []reconcile.CronJob
	if err := seq.Decode(&jobs); err != nil {
		return nil, sdk.NewError(sdk.ErrInvalidData, err)
	}
	return jobs, nil
}

// MergeCronJobs reconciles the cron jobs of env with desired and writes the
// result back into the document. Entries left untouched keep their comments
// and unknown keys.
func (f *File) MergeCronJobs(env string, desired []reconcile.CronJob, state reconcile.State) (bool, error) {
	existing, err := f.CronJobs(env)
	if err != nil {
		return false, err
	}
	if state == reconcile.StateAbsent && len(existing) == 0 {
		return false, nil
	}
	merged, changed := reconcile.CronJobs(existing, desired, state)
	if !changed {
		return false, nil
	}

	seq := f.cronJobsNode(env, true)
	nodes := make(map[string]*yaml.Node, len(seq.Content))
	for _, n := range seq.Content {
		if v := mappingValue(n, "name"); v != nil {
			nodes[v.Value] = n
		}
	}

	content := make([]*yaml.Node, 0, len(merged))
	for _, job := range merged {
		n, ok := nodes[job.Name]
		if !ok {
			n = &yaml.Node{}
			if err := n.Encode(job); err != nil {
				return false, sdk.WithStack(err)
			}
			content = append(content, n)
			continue
		}
		setScalar(n, "schedule", job.Schedule)
		setScalar(n, "command", job.Command)
		setScalar(n, "service", job.Service)
		content = append(content, n)
	}
	seq.Content = content
	seq.Style = 0
	return true, nil
}

// cronJobsNode returns environments.<env>.cronjobs, creating the missing
// mappings when create is set.
func (f *File) cronJobsNode(env string, create bool) *yaml.Node {
	n := f.root.Content[0]
	for _, key := range []string{"environments", env} {
		next := mappingValue(n, key)
		if next == nil || next.Kind != yaml.MappingNode {
			if !create {
				return nil
			}
			next = setValue(n, key, &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"})
		}
		n = next
	}
	seq := mappingValue(n, "cronjobs")
	if seq == nil || seq.Kind != yaml.SequenceNode {
		if !create {
			return nil
		}
		seq = setValue(n, "cronjobs", &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"})
	}
	return seq
}

func mappingValue(n *yaml.Node, key string) *yaml.Node {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

func setValue(n *yaml.Node, key string, value *yaml.Node) *yaml.Node {
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			n.Content[i+1] = value
			return value
		}
	}
	n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}, value)
	return value
}

func setScalar(n *yaml.Node, key, value string) {
	if value == "" {
		return
	}
	if v := mappingValue(n, key); v != nil && v.Kind == yaml.ScalarNode {
		v.Value = value
		v.Tag = "!!str"
		return
	}
	setValue(n, key, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value})
}
