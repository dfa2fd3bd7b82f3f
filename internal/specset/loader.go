package specset

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/viant/afs/storage"
	"github.com/viant/afs/url"

	"validate-specs/internal/common"
	"validate-specs/internal/diagnostic"
	"validate-specs/internal/document"
	"validate-specs/internal/naming"
)

// specsDirName is the directory of a metrics package holding one
// subdirectory per package.
const specsDirName = "specs"

type yamlFile struct {
	rel  string // relative to the package directory, "/" separated
	data []byte
}

// LoadMetricsPackage loads every package under root/specs. Each immediate
// subdirectory of specs is a package named after the directory.
func LoadMetricsPackage(ctx context.Context, root string, cfg LoadConfig) (*SpecificationSet, error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}

	root, err = absDir(root)
	if err != nil {
		return nil, err
	}

	specsDir := filepath.Join(root, specsDirName)

	ok, err := cfg.FS.Exists(ctx, specsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to check %s: %w", specsDir, err)
	}

	if !ok {
		return nil, fmt.Errorf("%s: %w", root, ErrNoSpecsDir)
	}

	dirs, err := listPackageDirs(ctx, cfg, specsDir)
	if err != nil {
		return nil, err
	}

	return LoadPackages(ctx, dirs, cfg)
}

// LoadSinglePackage loads the package whose specifications are in dir.
// The package is named after the directory.
func LoadSinglePackage(ctx context.Context, dir string, cfg LoadConfig) (*SpecificationSet, error) {
	return LoadPackages(ctx, []string{dir}, cfg)
}

// LoadPackages loads several package directories into one set. Bases may
// refer across packages regardless of the order of dirs.
func LoadPackages(ctx context.Context, dirs []string, cfg LoadConfig) (*SpecificationSet, error) {
	start := time.Now()

	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}

	var (
		pool []RawDocument
		rep  report
	)

	for _, dir := range dirs {
		docs, err := loadPackageDir(ctx, cfg, dir, &rep)
		if err != nil {
			return nil, err
		}

		pool = append(pool, docs...)
	}

	if err := rep.err(); err != nil {
		return nil, err
	}

	set := newSet(cfg.mergeOptions())
	if err := set.resolveAll(ctx, pool, cfg.Logger, cfg.Metrics); err != nil {
		return nil, err
	}

	set.diags.Merge(rep.diags)

	cfg.Metrics.observeLoad(start)
	cfg.Logger.Info("specifications loaded",
		"packages", len(dirs),
		"specifications", set.Len(),
		"partials", set.PartialCount(),
		"elapsed", time.Since(start))

	return set, nil
}

func listPackageDirs(ctx context.Context, cfg LoadConfig, specsDir string) ([]string, error) {
	var dirs []string

	var visitor storage.OnVisit = func(ctx context.Context, baseURL, parent string, info os.FileInfo, reader io.Reader) (bool, error) {
		if !info.IsDir() || parent != "" || isHidden(info.Name()) {
			return false, nil
		}

		dirs = append(dirs, filepath.Join(specsDir, info.Name()))

		return false, nil
	}

	if err := cfg.FS.Walk(ctx, specsDir, visitor); err != nil {
		return nil, fmt.Errorf("failed to list packages in %s: %w", specsDir, err)
	}

	slices.Sort(dirs)

	return dirs, nil
}

// loadPackageDir reads and normalizes every document of one package.
// Within a file, partials come before specifications. Documents that fail
// normalization are recorded in rep.
func loadPackageDir(ctx context.Context, cfg LoadConfig, dir string, rep *report) ([]RawDocument, error) {
	dir, err := absDir(dir)
	if err != nil {
		return nil, err
	}

	pkg, err := naming.NewPackageName(common.PackageName(dir))
	if err != nil {
		return nil, fmt.Errorf("package directory %s: %w", dir, err)
	}

	files, err := collectFiles(ctx, cfg, dir)
	if err != nil {
		return nil, err
	}

	var pool []RawDocument

	for _, f := range files {
		partials, specs, err := loadFile(cfg, pkg.Package(), filepath.Join(dir, filepath.FromSlash(f.rel)), f, rep)
		if err != nil {
			return nil, err
		}

		pool = append(pool, partials...)
		pool = append(pool, specs...)
	}

	return pool, nil
}

// absDir makes a local directory absolute so that its last element is the
// package name. Storage URLs are returned unchanged.
func absDir(dir string) (string, error) {
	if strings.Contains(dir, "://") {
		return dir, nil
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", dir, err)
	}

	return abs, nil
}

func collectFiles(ctx context.Context, cfg LoadConfig, dir string) ([]yamlFile, error) {
	var files []yamlFile

	var visitor storage.OnVisit = func(ctx context.Context, baseURL, parent string, info os.FileInfo, reader io.Reader) (bool, error) {
		if isHidden(info.Name()) {
			return false, nil
		}

		if info.IsDir() {
			return true, nil
		}

		rel := path.Join(parent, info.Name())
		if !cfg.selects(rel) {
			return true, nil
		}

		var (
			data []byte
			err  error
		)

		if reader != nil {
			data, err = io.ReadAll(reader)
		} else {
			data, err = cfg.FS.DownloadWithURL(ctx, url.Join(baseURL, rel))
		}

		if err != nil {
			return false, fmt.Errorf("failed to read %s: %w", rel, err)
		}

		files = append(files, yamlFile{rel: rel, data: data})

		return true, nil
	}

	if err := cfg.FS.Walk(ctx, dir, visitor); err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", dir, err)
	}

	slices.SortFunc(files, func(a, b yamlFile) int {
		return strings.Compare(a.rel, b.rel)
	})

	return files, nil
}

func loadFile(cfg LoadConfig, pkg, source string, f yamlFile, rep *report) (partials, specs []RawDocument, err error) {
	docs, err := document.DecodeAll(bytes.NewReader(f.data))
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", source, err)
	}

	cfg.Metrics.fileLoaded()

	if len(docs) == 0 {
		rep.diags.AddInfo(diagnostic.CodeEmptyDocument, "file holds no documents", source, "")
	}

	yamlID := common.YamlID(f.rel)

	for i, doc := range docs {
		raw, qualified, err := NewRawDocument(doc, pkg, yamlID)
		if err != nil {
			rep.fail(fmt.Sprintf("%s[%d]", source, i), err)
			continue
		}

		raw.Source = source
		raw.Index = i

		cfg.Metrics.documentLoaded(raw.Kind)

		if raw.Kind == document.KindPartial {
			partials = append(partials, raw)
			continue
		}

		if !qualified {
			cfg.Logger.Debug("specification name completed after inheritance",
				"name", raw.Identity(), "source", source)
			rep.diags.AddWarning(diagnostic.CodeNameFallback,
				fmt.Sprintf("name is completed after inheritance (%s)", source),
				raw.Identity(), "")
		}

		specs = append(specs, raw)
	}

	cfg.Logger.Debug("loaded file",
		"package", pkg,
		"file", f.rel,
		"partials", len(partials),
		"specifications", len(specs))

	return partials, specs, nil
}

// selects reports whether the file at rel should be read.
func (c LoadConfig) selects(rel string) bool {
	if !slices.Contains(c.Extensions, path.Ext(rel)) {
		return false
	}

	if len(c.Include) == 0 {
		return true
	}

	for _, p := range c.Include {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}

	return false
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
