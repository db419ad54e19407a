package graph

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
)

// WorkFileName is the root manifest listing workspace members.
const WorkFileName = "go.work"

// Resolve builds the dependency graph for the workspace rooted at root. The
// members come from the root go.work; a repository without one is treated as
// a single-module workspace. Each member's go.mod and metadata file are
// parsed into package nodes and versioned links.
func Resolve(root string) (*PackageGraph, error) {
	memberDirs, err := workspaceMembers(root)
	if err != nil {
		return nil, err
	}

	members := make(map[string]*member) // keyed by module path
	var order []string
	for _, dir := range memberDirs {
		abs := filepath.Join(root, dir)
		data, err := os.ReadFile(filepath.Join(abs, "go.mod"))
		if err != nil {
			return nil, fmt.Errorf("reading go.mod for member %s: %w", dir, err)
		}
		f, err := modfile.Parse(filepath.Join(dir, "go.mod"), data, nil)
		if err != nil {
			return nil, fmt.Errorf("parsing go.mod for member %s: %w", dir, err)
		}
		if f.Module == nil {
			return nil, fmt.Errorf("go.mod for member %s has no module directive", dir)
		}
		meta, err := LoadMeta(abs)
		if err != nil {
			return nil, err
		}
		name := f.Module.Mod.Path
		if _, ok := members[name]; ok {
			return nil, fmt.Errorf("module %s declared by more than one workspace member", name)
		}
		members[name] = &member{dir: dir, file: f, meta: meta}
		order = append(order, name)
	}
	sort.Strings(order)

	b := NewBuilder()
	for _, name := range order {
		m := members[name]
		abs := filepath.Join(root, m.dir)
		b.AddPackage(&Package{
			Name:         name,
			Version:      m.meta.Version,
			InWorkspace:  true,
			Path:         m.dir,
			Publish:      m.meta.Policy(),
			Authors:      m.meta.Authors,
			License:      m.meta.License,
			BuildTargets: buildTargets(abs),
			HasGenerate:  hasGenerateDirective(abs),
		})
	}

	// External nodes are created on demand, one per resolved version.
	externals := make(map[string]bool)
	addExternal := func(name, version string) string {
		key := Key(name, version)
		if !externals[key] {
			if m, ok := members[name]; ok && m.meta.Version == version {
				return key
			}
			externals[key] = true
			b.AddPackage(&Package{Name: name, Version: version})
		}
		return key
	}

	for _, name := range order {
		m := members[name]
		fromKey := Key(name, m.meta.Version)
		replacements := make(map[string]module.Version)
		for _, r := range m.file.Replace {
			if r.Old.Version == "" {
				replacements[r.Old.Path] = r.New
			} else {
				replacements[r.Old.Path+"@"+r.Old.Version] = r.New
			}
		}
		lookupReplace := func(mod module.Version) (module.Version, bool) {
			if rep, ok := replacements[mod.Path+"@"+mod.Version]; ok {
				return rep, true
			}
			rep, ok := replacements[mod.Path]
			return rep, ok
		}

		for _, req := range m.file.Require {
			if req.Indirect {
				continue
			}
			link, toKey, err := resolveRequire(req.Mod, lookupReplace, members, addExternal)
			if err != nil {
				return nil, fmt.Errorf("resolving dependency %s of %s: %w", req.Mod.Path, name, err)
			}
			b.AddLink(fromKey, toKey, link.VersionReq, LinkNormal, link.Resolution)
		}

		for _, tool := range m.file.Tool {
			version := "v0.0.0"
			for _, req := range m.file.Require {
				if req.Mod.Path == tool.Path || strings.HasPrefix(tool.Path, req.Mod.Path+"/") {
					version = req.Mod.Version
					break
				}
			}
			toKey := addExternal(toolModule(tool.Path, m.file), version)
			b.AddLink(fromKey, toKey, version, LinkTool, Resolution{Kind: ResolutionRegistry})
		}
	}

	g, err := b.Build()
	if err != nil {
		return nil, err
	}
	return g, nil
}

// member is a workspace module during resolution.
type member struct {
	dir  string // workspace-relative, cleaned
	file *modfile.File
	meta Meta
}

type resolvedLink struct {
	VersionReq string
	Resolution Resolution
}

func resolveRequire(
	mod module.Version,
	lookupReplace func(module.Version) (module.Version, bool),
	members map[string]*member,
	addExternal func(name, version string) string,
) (resolvedLink, string, error) {
	// A directory replacement makes this a path dependency with an
	// unconstrained version requirement.
	if rep, ok := lookupReplace(mod); ok {
		if modfile.IsDirectoryPath(rep.Path) {
			var toKey string
			if m, ok := members[mod.Path]; ok {
				toKey = Key(mod.Path, m.meta.Version)
			} else {
				toKey = addExternal(mod.Path, "v0.0.0")
			}
			return resolvedLink{
				VersionReq: "*",
				Resolution: Resolution{Kind: ResolutionPath, Dir: rep.Path},
			}, toKey, nil
		}
		// Replaced by another module: resolution follows the replacement.
		res, err := moduleResolution(rep.Path, rep.Version)
		if err != nil {
			return resolvedLink{}, "", err
		}
		toKey := addExternal(mod.Path, rep.Version)
		return resolvedLink{VersionReq: mod.Version, Resolution: res}, toKey, nil
	}

	if m, ok := members[mod.Path]; ok {
		// A sibling required without a path replacement keeps its literal
		// version requirement.
		return resolvedLink{
			VersionReq: mod.Version,
			Resolution: Resolution{Kind: ResolutionRegistry},
		}, Key(mod.Path, m.meta.Version), nil
	}

	res, err := moduleResolution(mod.Path, mod.Version)
	if err != nil {
		return resolvedLink{}, "", err
	}
	return resolvedLink{VersionReq: mod.Version, Resolution: res}, addExternal(mod.Path, mod.Version), nil
}

// moduleResolution classifies a module version: pseudo-versions pin a git
// commit, everything else is a registry release.
func moduleResolution(path, version string) (Resolution, error) {
	if module.IsPseudoVersion(version) {
		rev, err := module.PseudoVersionRev(version)
		if err != nil {
			return Resolution{}, fmt.Errorf("extracting commit from pseudo-version %s: %w", version, err)
		}
		return Resolution{Kind: ResolutionGit, Repository: path, Commit: rev}, nil
	}
	return Resolution{Kind: ResolutionRegistry}, nil
}

func workspaceMembers(root string) ([]string, error) {
	data, err := os.ReadFile(filepath.Join(root, WorkFileName))
	if os.IsNotExist(err) {
		return []string{"."}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", WorkFileName, err)
	}
	wf, err := modfile.ParseWork(WorkFileName, data, nil)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", WorkFileName, err)
	}
	var dirs []string
	for _, use := range wf.Use {
		dirs = append(dirs, filepath.ToSlash(filepath.Clean(use.Path)))
	}
	if len(dirs) == 0 {
		return nil, fmt.Errorf("%s lists no workspace members", WorkFileName)
	}
	return dirs, nil
}

// toolModule maps a tool package path back to its providing module by
// longest require-directive prefix.
func toolModule(toolPath string, f *modfile.File) string {
	best := toolPath
	for _, req := range f.Require {
		if toolPath == req.Mod.Path || strings.HasPrefix(toolPath, req.Mod.Path+"/") {
			best = req.Mod.Path
			break
		}
	}
	return best
}

func buildTargets(dir string) []BuildTarget {
	entries, err := os.ReadDir(filepath.Join(dir, "cmd"))
	if err != nil {
		return nil
	}
	var targets []BuildTarget
	for _, e := range entries {
		if e.IsDir() {
			targets = append(targets, BuildTarget{Name: e.Name(), Path: "cmd/" + e.Name()})
		}
	}
	return targets
}

var generateDirective = []byte("//go:generate")

func hasGenerateDirective(dir string) bool {
	found := false
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || found {
			return fs.SkipAll
		}
		if d.IsDir() {
			switch d.Name() {
			case "vendor", "testdata", ".git":
				return fs.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") {
			return nil
		}
		data, err := os.ReadFile(path)
		if err == nil && bytes.Contains(data, generateDirective) {
			found = true
			return fs.SkipAll
		}
		return nil
	})
	return found
}
