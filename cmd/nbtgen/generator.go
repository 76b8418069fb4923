package main

import (
	"bytes"
	"cmp"
	_ "embed"
	"errors"
	"fmt"
	"go/ast"
	"go/format"
	"go/token"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"sort"
	"strconv"
	"strings"
	"text/template"

	"golang.org/x/tools/go/packages"
)

const (
	generatedFile   = "nbt_gen.go"
	generatedHeader = "// Code generated by nbtgen; DO NOT EDIT."
)

type packageInfo struct {
	Dir     string
	Name    string
	Structs []structInfo
}

type structInfo struct {
	Name   string
	Fields []fieldInfo
}

type fieldInfo struct {
	Name     string
	Type     string
	WireName string
	Pos      int
	// Method and WireType are set for leaf fields encoded with a direct
	// Encoder call; other fields go through EncodeElement.
	Method    string
	WireType  string
	ShapeExpr string
}

type leaf struct {
	method, wireType, shape string
}

var leaves = map[string]leaf{
	"bool":    {"Bool", "bool", "BoolShape"},
	"int8":    {"Int8", "int8", "Int8Shape"},
	"int16":   {"Int16", "int16", "Int16Shape"},
	"int32":   {"Int32", "int32", "Int32Shape"},
	"int64":   {"Int64", "int64", "Int64Shape"},
	"uint8":   {"Int8", "int8", "Uint8Shape"},
	"byte":    {"Int8", "int8", "Uint8Shape"},
	"uint16":  {"Char", "uint16", "CharShape"},
	"float32": {"Float32", "float32", "Float32Shape"},
	"float64": {"Float64", "float64", "Float64Shape"},
	"string":  {"String", "string", "StringShape"},
}

//go:embed templates/nbt_gen.gotemplate
var nbtGenTemplate string

var genTemplate = template.Must(template.New("nbt_gen").Parse(nbtGenTemplate))

func collectPackageInfos(root string) ([]*packageInfo, error) {
	dirs := make(map[string]struct{})
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && shouldSkipDir(d.Name()) {
				return fs.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), ".go") || strings.HasSuffix(d.Name(), "_test.go") {
			return nil
		}
		dirs[filepath.Dir(path)] = struct{}{}
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	var infos []*packageInfo
	for dir := range dirs {
		pkgInfos, err := parsePackageDir(dir)
		if err != nil {
			return nil, err
		}
		infos = append(infos, pkgInfos...)
	}

	sort.Slice(infos, func(i, j int) bool {
		if infos[i].Dir == infos[j].Dir {
			return infos[i].Name < infos[j].Name
		}
		return infos[i].Dir < infos[j].Dir
	})
	return infos, nil
}

func parsePackageDir(dir string) ([]*packageInfo, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedSyntax | packages.NeedFiles,
		Dir:  dir,
	}
	pkgs, err := packages.Load(cfg, ".")
	if err != nil {
		return nil, err
	}

	var infos []*packageInfo
	for _, pkg := range pkgs {
		if len(pkg.Errors) > 0 {
			if isSkippablePackageErrors(pkg.Errors) {
				log.Printf("nbtgen: skipping %s (no buildable Go files for current tags)", dir)
				continue
			}
			return nil, fmt.Errorf("package load error in %s: %v", dir, pkg.Errors[0])
		}
		if pkg.Name == "" || strings.HasSuffix(pkg.Name, "_test") {
			continue
		}
		info := &packageInfo{Dir: dir, Name: pkg.Name}
		var files []*ast.File
		for _, file := range pkg.Syntax {
			if pkg.Fset != nil {
				base := filepath.Base(pkg.Fset.Position(file.Pos()).Filename)
				if strings.HasSuffix(base, "_test.go") || base == generatedFile {
					continue
				}
			}
			files = append(files, file)
			info.Structs = append(info.Structs, structsInFile(pkg.Fset, file, dir)...)
		}
		info.Structs = dropCycles(info.Structs, typeGraph(files...), dir)
		sort.Slice(info.Structs, func(i, j int) bool {
			return info.Structs[i].Name < info.Structs[j].Name
		})
		infos = append(infos, info)
	}
	return infos, nil
}

func isSkippablePackageErrors(errs []packages.Error) bool {
	if len(errs) == 0 {
		return false
	}
	for _, err := range errs {
		msg := strings.ToLower(err.Msg)
		if strings.Contains(msg, "build constraints exclude all go files") {
			continue
		}
		if strings.Contains(msg, "no go files") {
			continue
		}
		return false
	}
	return true
}

// structsInFile returns the structs in file that carry at least one nbt
// field tag and that the generator can handle.
func structsInFile(fset *token.FileSet, file *ast.File, dir string) []structInfo {
	var out []structInfo
	ast.Inspect(file, func(n ast.Node) bool {
		ts, ok := n.(*ast.TypeSpec)
		if !ok {
			return true
		}
		st, ok := ts.Type.(*ast.StructType)
		if !ok {
			return false
		}
		if !hasNBTTag(st) {
			return false
		}
		name := ts.Name.Name
		if ts.TypeParams != nil && len(ts.TypeParams.List) > 0 {
			log.Printf("nbtgen: skipping %s in %s (generic structs not supported)", name, dir)
			return false
		}
		fields, err := collectFields(fset, st)
		if err != nil {
			log.Printf("nbtgen: skipping %s in %s (%v)", name, dir, err)
			return false
		}
		out = append(out, structInfo{Name: name, Fields: fields})
		return false
	})
	return out
}

func hasNBTTag(st *ast.StructType) bool {
	for _, field := range st.Fields.List {
		if _, ok := nbtTag(field); ok {
			return true
		}
	}
	return false
}

func nbtTag(field *ast.Field) (string, bool) {
	if field.Tag == nil {
		return "", false
	}
	tagValue, err := strconv.Unquote(field.Tag.Value)
	if err != nil {
		return "", false
	}
	return reflect.StructTag(tagValue).Lookup("nbt")
}

// collectFields mirrors the reflective field rules: exported fields in
// declaration order, renamed by the nbt tag and skipped by "-".
func collectFields(fset *token.FileSet, st *ast.StructType) ([]fieldInfo, error) {
	var fields []fieldInfo
	for _, field := range st.Fields.List {
		if len(field.Names) == 0 {
			return nil, errors.New("embedded fields not supported")
		}
		tag, _ := nbtTag(field)
		wireName, _, _ := strings.Cut(tag, ",")
		if wireName == "-" {
			continue
		}
		typ, err := formatNode(fset, field.Type)
		if err != nil {
			return nil, err
		}
		for _, name := range field.Names {
			if !name.IsExported() {
				continue
			}
			f := fieldInfo{
				Name:      name.Name,
				Type:      typ,
				WireName:  cmp.Or(wireName, name.Name),
				Pos:       len(fields),
				ShapeExpr: fmt.Sprintf("structure.MustShapeFor[%s]()", typ),
			}
			if l, ok := leaves[typ]; ok {
				f.Method, f.WireType = l.method, l.wireType
				f.ShapeExpr = "structure." + l.shape
			}
			fields = append(fields, f)
		}
	}
	if len(fields) == 0 {
		return nil, errors.New("no exported fields")
	}
	return fields, nil
}

// typeGraph maps every named type declared in files to the package-local
// identifiers its definition mentions. Field names and package-qualified
// types are not edges.
func typeGraph(files ...*ast.File) map[string][]string {
	graph := make(map[string][]string)
	for _, file := range files {
		for _, decl := range file.Decls {
			gd, ok := decl.(*ast.GenDecl)
			if !ok || gd.Tok != token.TYPE {
				continue
			}
			for _, spec := range gd.Specs {
				ts := spec.(*ast.TypeSpec)
				graph[ts.Name.Name] = typeRefs(ts.Type)
			}
		}
	}
	return graph
}

func typeRefs(expr ast.Expr) []string {
	var refs []string
	var visit func(ast.Node) bool
	visit = func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.SelectorExpr:
			return false
		case *ast.Field:
			if n.Type != nil {
				ast.Inspect(n.Type, visit)
			}
			return false
		case *ast.Ident:
			refs = append(refs, n.Name)
		}
		return true
	}
	ast.Inspect(expr, visit)
	return refs
}

// dropCycles removes structs that can reach themselves through graph. Their
// shape initialisers would re-enter each other, so those types are left to
// the reflective path, which resolves recursion.
func dropCycles(structs []structInfo, graph map[string][]string, dir string) []structInfo {
	out := structs[:0]
	for _, s := range structs {
		if reaches(graph, s.Name) {
			log.Printf("nbtgen: skipping %s in %s (recursive structs not supported)", s.Name, dir)
			continue
		}
		out = append(out, s)
	}
	return out
}

func reaches(graph map[string][]string, name string) bool {
	seen := make(map[string]bool)
	stack := slices.Clone(graph[name])
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == name {
			return true
		}
		if seen[n] {
			continue
		}
		seen[n] = true
		stack = append(stack, graph[n]...)
	}
	return false
}

func formatNode(fset *token.FileSet, node ast.Node) (string, error) {
	var buf bytes.Buffer
	if fset == nil {
		fset = token.NewFileSet()
	}
	if err := format.Node(&buf, fset, node); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func shouldSkipDir(name string) bool {
	if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
		return true
	}
	switch name {
	case "vendor", "node_modules", "testdata":
		return true
	default:
		return false
	}
}

type templateData struct {
	PackageName string
	Structs     []structInfo
}

func generatePackage(info *packageInfo) ([]byte, error) {
	var buf bytes.Buffer
	if err := genTemplate.Execute(&buf, templateData{
		PackageName: info.Name,
		Structs:     info.Structs,
	}); err != nil {
		return nil, err
	}
	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format generated %s: %w", info.Name, err)
	}
	return formatted, nil
}

// fileCurrent reports whether filePath already holds data.
func fileCurrent(filePath string, data []byte) (bool, error) {
	existing, err := os.ReadFile(filePath)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return bytes.Equal(existing, data), nil
}

func writeFileIfChanged(filePath string, data []byte) (bool, error) {
	current, err := fileCurrent(filePath, data)
	if err != nil || current {
		return false, err
	}
	if err := os.WriteFile(filePath, data, 0o644); err != nil {
		return false, err
	}
	return true, nil
}

// ownsGeneratedFile reports whether dir holds a generated file carrying our
// header. Files without it are left alone.
func ownsGeneratedFile(dir string) (bool, error) {
	data, err := os.ReadFile(filepath.Join(dir, generatedFile))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return bytes.HasPrefix(data, []byte(generatedHeader)), nil
}

func removeGeneratedFile(dir string) (bool, error) {
	owned, err := ownsGeneratedFile(dir)
	if err != nil || !owned {
		return false, err
	}
	if err := os.Remove(filepath.Join(dir, generatedFile)); err != nil {
		return false, err
	}
	return true, nil
}
