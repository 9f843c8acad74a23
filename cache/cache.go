// Package cache persists atlas downloads as delimited tables: one unionize
// table per seed structure, named by the structure's acronym, plus the
// ontology, the experiment catalogue and a manifest of download times.
package cache

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/brainatlas"
	"github.com/carbocation/brainatlas/ontology"
	"github.com/carbocation/pfx"
	"github.com/gocarina/gocsv"
)

const (
	TableSuffix        = ".csv"
	StructuresFile     = "structures.csv"
	StructureSetsFile  = "structure_sets.csv"
	ExperimentsFile    = "experiments.csv"
	ManifestFile       = "manifest.csv"
	acronymPathReplace = "_"
)

// Cache is rooted at a local folder or a gs://bucket/prefix. Storage is only
// needed for gs:// roots.
type Cache struct {
	Root    string
	Storage *storage.Client
}

func New(root string, client *storage.Client) *Cache {
	return &Cache{Root: root, Storage: client}
}

// TablePath is where the unionize table seeded at acronym lives.
func (c *Cache) TablePath(acronym string) string {
	name := strings.NewReplacer("/", acronymPathReplace, `\`, acronymPathReplace).Replace(acronym)
	return brainatlas.JoinPath(c.Root, name+TableSuffix)
}

// Exists reports whether the file at path is present.
func (c *Cache) Exists(ctx context.Context, path string) (bool, error) {
	if !brainatlas.IsGoogleStoragePath(path) {
		_, err := os.Stat(path)
		if os.IsNotExist(err) {
			return false, nil
		}
		return err == nil, err
	}

	if c.Storage == nil {
		return false, fmt.Errorf("%s: a google storage client is required to read gs:// paths", path)
	}

	bucketName, objectName, err := brainatlas.SplitGoogleStoragePath(path)
	if err != nil {
		return false, err
	}

	_, err = c.Storage.Bucket(bucketName).Object(objectName).Attrs(ctx)
	if err == storage.ErrObjectNotExist {
		return false, nil
	}

	return err == nil, err
}

func (c *Cache) HasUnionizes(ctx context.Context, acronym string) (bool, error) {
	return c.Exists(ctx, c.TablePath(acronym))
}

func (c *Cache) ReadUnionizes(ctx context.Context, acronym string) ([]brainatlas.Unionize, error) {
	out := []brainatlas.Unionize{}
	err := c.read(ctx, c.TablePath(acronym), &out)

	return out, err
}

func (c *Cache) WriteUnionizes(ctx context.Context, acronym string, rows []brainatlas.Unionize) error {
	if rows == nil {
		rows = []brainatlas.Unionize{}
	}

	return c.write(ctx, c.TablePath(acronym), &rows)
}

func (c *Cache) ReadStructures(ctx context.Context) ([]ontology.Structure, error) {
	out := []ontology.Structure{}
	err := c.read(ctx, brainatlas.JoinPath(c.Root, StructuresFile), &out)

	return out, err
}

func (c *Cache) WriteStructures(ctx context.Context, structures []ontology.Structure) error {
	return c.write(ctx, brainatlas.JoinPath(c.Root, StructuresFile), &structures)
}

func (c *Cache) ReadStructureSets(ctx context.Context) ([]ontology.StructureSet, error) {
	out := []ontology.StructureSet{}
	err := c.read(ctx, brainatlas.JoinPath(c.Root, StructureSetsFile), &out)

	return out, err
}

func (c *Cache) WriteStructureSets(ctx context.Context, sets []ontology.StructureSet) error {
	return c.write(ctx, brainatlas.JoinPath(c.Root, StructureSetsFile), &sets)
}

func (c *Cache) ReadExperiments(ctx context.Context) ([]brainatlas.Experiment, error) {
	out := []brainatlas.Experiment{}
	err := c.read(ctx, brainatlas.JoinPath(c.Root, ExperimentsFile), &out)

	return out, err
}

func (c *Cache) WriteExperiments(ctx context.Context, experiments []brainatlas.Experiment) error {
	return c.write(ctx, brainatlas.JoinPath(c.Root, ExperimentsFile), &experiments)
}

// read decodes the table at path into out, a pointer to a slice of structs.
// A zero-length file decodes to no rows.
func (c *Cache) read(ctx context.Context, path string, out interface{}) error {
	body, delim, err := brainatlas.ReadTable(ctx, path, c.Storage)
	if err != nil {
		return err
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	if err := gocsv.UnmarshalCSV(brainatlas.NewTableReader(body, delim), out); err != nil {
		return pfx.Err(fmt.Errorf("%s: %w", path, err))
	}

	return nil
}

func (c *Cache) write(ctx context.Context, path string, rows interface{}) error {
	w, err := brainatlas.CreateFileOrGoogleStorage(ctx, path, c.Storage)
	if err != nil {
		return pfx.Err(err)
	}

	cw := gocsv.NewSafeCSVWriter(csv.NewWriter(w))
	if err := gocsv.MarshalCSV(rows, cw); err != nil {
		w.Close()
		return pfx.Err(fmt.Errorf("%s: %w", path, err))
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		w.Close()
		return pfx.Err(fmt.Errorf("%s: %w", path, err))
	}

	return w.Close()
}
