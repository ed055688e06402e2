// SPDX-License-Identifier: MIT
// Copyright (c) 2026 pydist contributors
// Source: github.com/pydist/pydist

package pydist

import (
	"fmt"
	"net/mail"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/pelletier/go-toml/v2"
)

// pep621AllowedFields are the recognized [project] keys. Unexpected keys are
// warned about rather than rejected, matching index tooling behavior.
var pep621AllowedFields = map[string]struct{}{
	"name":                  {},
	"version":               {},
	"description":           {},
	"readme":                {},
	"requires-python":       {},
	"license":               {},
	"authors":               {},
	"maintainers":           {},
	"keywords":              {},
	"classifiers":           {},
	"urls":                  {},
	"scripts":               {},
	"gui-scripts":           {},
	"entry-points":          {},
	"dependencies":          {},
	"optional-dependencies": {},
}

// knownToolKeys are the recognized [tool.pydist] keys. Unknown keys are a
// hard configuration error, so typos never silently select nothing.
var knownToolKeys = map[string]struct{}{
	"includes":                     {},
	"excludes":                     {},
	"metadata_files":               {},
	"wheel_path_prefixes_to_strip": {},
	"editable_paths":               {},
	"sdist_extra_includes":         {},
	"sdist_extra_excludes":         {},
	"sdist_scripts":                {},
	"wheel_scripts":                {},
}

// readmeContentTypes maps readme file extensions to description content types.
var readmeContentTypes = map[string]string{
	".rst": "text/x-rst",
	".md":  "text/markdown",
	".txt": "text/plain",
}

// ReadProjectFile reads and checks a pyproject.toml-like project description
// file, returning the normalized project model.
func ReadProjectFile(projectFile string) (*Project, error) {
	if projectFile == "" {
		projectFile = DefaultProjectFile
	}

	abs, err := filepath.Abs(projectFile)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", projectFile, err)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrConfig, abs, err)
	}

	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", ErrConfig, abs, err)
	}

	return prepProjectConfig(doc, abs)
}

// prepProjectConfig builds a Project from a decoded project description.
func prepProjectConfig(doc map[string]any, file string) (*Project, error) {
	projTable, ok := doc["project"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: [project] not found in %s", ErrConfig, file)
	}

	baseDir := filepath.Dir(file)

	project, err := readProjectTable(projTable, baseDir)
	if err != nil {
		return nil, err
	}

	var toolTable map[string]any
	if tool, ok := doc["tool"].(map[string]any); ok {
		toolTable, _ = tool["pydist"].(map[string]any)
	}
	if len(toolTable) == 0 {
		return nil, fmt.Errorf("%w: [tool.pydist] not found in %s", ErrConfig, file)
	}

	selection, err := readToolTable(toolTable)
	if err != nil {
		return nil, err
	}

	project.Selection = selection
	project.File = file
	project.BaseDir = baseDir

	return project, nil
}

// readProjectTable maps the [project] table onto core metadata and entry
// points.
func readProjectTable(proj map[string]any, baseDir string) (*Project, error) {
	project := &Project{EntryPoints: map[string]map[string]string{}}
	meta := &project.Meta

	for key := range proj {
		if _, ok := pep621AllowedFields[key]; !ok {
			log.Warn("unexpected key under [project]", "key", key)
		}
	}

	name, err := requireString(proj, "name")
	if err != nil {
		return nil, err
	}
	meta.Name = name

	rawVersion, err := requireString(proj, "version")
	if err != nil {
		return nil, err
	}
	version, err := CheckVersion(rawVersion)
	if err != nil {
		return nil, err
	}
	meta.Version = version

	summary, err := requireString(proj, "description")
	if err != nil {
		return nil, err
	}
	meta.Summary = summary

	if raw, ok := proj["readme"]; ok {
		if err := readReadme(raw, baseDir, meta); err != nil {
			return nil, err
		}
	}

	if raw, ok := proj["requires-python"]; ok {
		value, err := asString(raw, "requires-python")
		if err != nil {
			return nil, err
		}
		meta.RequiresPython = value
	}

	if raw, ok := proj["license"]; ok {
		if err := checkLicense(raw); err != nil {
			return nil, err
		}
	}

	if raw, ok := proj["authors"]; ok {
		names, emails, err := readPeople(raw, "authors")
		if err != nil {
			return nil, err
		}
		meta.Author, meta.AuthorEmail = names, emails
	}

	if raw, ok := proj["maintainers"]; ok {
		names, emails, err := readPeople(raw, "maintainers")
		if err != nil {
			return nil, err
		}
		meta.Maintainer, meta.MaintainerEmail = names, emails
	}

	if raw, ok := proj["keywords"]; ok {
		keywords, err := asStringList(raw, "keywords")
		if err != nil {
			return nil, err
		}
		meta.Keywords = strings.Join(keywords, ",")
	}

	if raw, ok := proj["classifiers"]; ok {
		classifiers, err := asStringList(raw, "classifiers")
		if err != nil {
			return nil, err
		}
		meta.Classifiers = classifiers
	}

	if raw, ok := proj["urls"]; ok {
		urls, err := asTable(raw, "urls")
		if err != nil {
			return nil, err
		}
		labels := make([]string, 0, len(urls))
		for label := range urls {
			labels = append(labels, label)
		}
		sort.Strings(labels)
		for _, label := range labels {
			value, err := asString(urls[label], "urls."+label)
			if err != nil {
				return nil, err
			}
			meta.ProjectURLs = append(meta.ProjectURLs, label+", "+value)
		}
	}

	if err := readEntryPoints(proj, project); err != nil {
		return nil, err
	}

	if err := readDependencies(proj, meta); err != nil {
		return nil, err
	}

	if _, ok := proj["dynamic"]; ok {
		return nil, fmt.Errorf("%w: dynamic fields are not supported", ErrConfig)
	}

	return project, nil
}

// readReadme resolves the readme field (string or table form) into the long
// description and its content type.
func readReadme(raw any, baseDir string, meta *Metadata) error {
	switch readme := raw.(type) {
	case string:
		content, contentType, err := descriptionFromFile(readme, baseDir, true)
		if err != nil {
			return err
		}
		meta.Description = content
		meta.DescriptionContentType = contentType

	case map[string]any:
		for key := range readme {
			switch key {
			case "text", "file", "content-type":
			default:
				return fmt.Errorf("%w: unrecognised key in [project.readme]: %s", ErrConfig, key)
			}
		}

		rawType, ok := readme["content-type"]
		if !ok {
			return fmt.Errorf("%w: content-type field required in [project.readme] table", ErrConfig)
		}
		contentType, err := asString(rawType, "readme.content-type")
		if err != nil {
			return err
		}
		base := strings.TrimSpace(strings.Split(contentType, ";")[0])
		if !isKnownContentType(base) {
			return fmt.Errorf("%w: unrecognised readme content-type: %q", ErrConfig, base)
		}

		fileRaw, hasFile := readme["file"]
		textRaw, hasText := readme["text"]
		switch {
		case hasFile && hasText:
			return fmt.Errorf("%w: [project.readme] should specify file or text, not both", ErrConfig)
		case hasFile:
			file, err := asString(fileRaw, "readme.file")
			if err != nil {
				return err
			}
			content, _, err := descriptionFromFile(file, baseDir, false)
			if err != nil {
				return err
			}
			meta.Description = content
		case hasText:
			text, err := asString(textRaw, "readme.text")
			if err != nil {
				return err
			}
			meta.Description = text
		default:
			return fmt.Errorf("%w: file or text field required in [project.readme] table", ErrConfig)
		}
		meta.DescriptionContentType = contentType

	default:
		return fmt.Errorf("%w: project.readme should be a string or a table", ErrConfig)
	}

	return nil
}

// isKnownContentType reports whether a readme content type base is recognized.
func isKnownContentType(base string) bool {
	for _, known := range readmeContentTypes {
		if base == known {
			return true
		}
	}

	return false
}

// descriptionFromFile reads a relative readme path and guesses its content
// type from the extension when asked to.
func descriptionFromFile(relPath, baseDir string, guessType bool) (string, string, error) {
	if path.IsAbs(relPath) || filepath.IsAbs(relPath) {
		return "", "", fmt.Errorf("%w: readme path must be relative", ErrConfig)
	}

	descPath := filepath.Join(baseDir, filepath.FromSlash(relPath))
	data, err := os.ReadFile(descPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", "", fmt.Errorf("%w: description file %s does not exist", ErrConfig, descPath)
		}

		return "", "", fmt.Errorf("read description %s: %w", descPath, err)
	}

	contentType := ""
	if guessType {
		ext := strings.ToLower(filepath.Ext(descPath))
		contentType = readmeContentTypes[ext]
		if contentType == "" {
			log.Warn("unknown extension for description file", "ext", ext)
		}
	}

	return string(data), contentType, nil
}

// checkLicense validates the [project.license] table shape. The brief
// License metadata field stays empty; license files travel through the
// metadata-file selection instead.
func checkLicense(raw any) error {
	license, ok := raw.(map[string]any)
	if !ok {
		return fmt.Errorf("%w: license field should be a table", ErrConfig)
	}

	for key := range license {
		switch key {
		case "text", "file":
		default:
			return fmt.Errorf("%w: unrecognised key in [project.license]: %s", ErrConfig, key)
		}
	}

	_, hasFile := license["file"]
	_, hasText := license["text"]
	switch {
	case hasFile && hasText:
		return fmt.Errorf("%w: [project.license] should specify file or text, not both", ErrConfig)
	case !hasFile && !hasText:
		return fmt.Errorf("%w: file or text field required in [project.license] table", ErrConfig)
	}

	return nil
}

// readPeople converts a PEP 621 authors/maintainers list into the comma
// joined name and address metadata fields.
func readPeople(raw any, label string) (string, string, error) {
	list, ok := raw.([]any)
	if !ok {
		return "", "", fmt.Errorf("%w: %s info must be a list of tables", ErrConfig, label)
	}

	var names, emails []string
	for _, item := range list {
		person, ok := item.(map[string]any)
		if !ok {
			return "", "", fmt.Errorf("%w: %s info must be a list of tables", ErrConfig, label)
		}

		for key := range person {
			switch key {
			case "name", "email":
			default:
				return "", "", fmt.Errorf("%w: unrecognised key in %s info: %s", ErrConfig, label, key)
			}
		}

		name, _ := person["name"].(string)
		email, _ := person["email"].(string)
		switch {
		case email != "" && name != "":
			addr := mail.Address{Name: name, Address: email}
			emails = append(emails, addr.String())
		case email != "":
			emails = append(emails, email)
		case name != "":
			names = append(names, name)
		}
	}

	return strings.Join(names, ", "), strings.Join(emails, ", "), nil
}

// readEntryPoints maps entry-points, scripts and gui-scripts onto the entry
// point groups.
func readEntryPoints(proj map[string]any, project *Project) error {
	if raw, ok := proj["entry-points"]; ok {
		groups, err := asTable(raw, "entry-points")
		if err != nil {
			return err
		}

		for groupName, rawGroup := range groups {
			if groupName == "console_scripts" || groupName == "gui_scripts" {
				return fmt.Errorf(
					"%w: scripts should be specified in [project.scripts] or [project.gui-scripts], not under [project.entry-points]",
					ErrConfig,
				)
			}

			group, err := asStringTable(rawGroup, "entry-points."+groupName)
			if err != nil {
				return err
			}
			project.EntryPoints[groupName] = group
		}
	}

	if raw, ok := proj["scripts"]; ok {
		scripts, err := asStringTable(raw, "scripts")
		if err != nil {
			return err
		}
		project.EntryPoints["console_scripts"] = scripts
	}

	if raw, ok := proj["gui-scripts"]; ok {
		scripts, err := asStringTable(raw, "gui-scripts")
		if err != nil {
			return err
		}
		project.EntryPoints["gui_scripts"] = scripts
	}

	for groupName, group := range project.EntryPoints {
		for name, target := range group {
			if _, _, err := parseEntryPoint(target); err != nil {
				return fmt.Errorf("%w: %s.%s: %w", ErrConfig, groupName, name, err)
			}
		}
	}

	return nil
}

// readDependencies expands dependencies and optional-dependencies into
// requirement strings. Extras become conditional requirements with
// environment-marker clauses.
func readDependencies(proj map[string]any, meta *Metadata) error {
	var reqs []string
	if raw, ok := proj["dependencies"]; ok {
		list, err := asStringList(raw, "dependencies")
		if err != nil {
			return err
		}
		reqs = list
	}

	if raw, ok := proj["optional-dependencies"]; ok {
		optional, err := asTable(raw, "optional-dependencies")
		if err != nil {
			return err
		}

		extras := make([]string, 0, len(optional))
		for extra := range optional {
			extras = append(extras, extra)
		}
		sort.Strings(extras)

		for _, extra := range extras {
			list, err := asStringList(optional[extra], "optional-dependencies."+extra)
			if err != nil {
				return err
			}

			for _, req := range list {
				if name, marker, ok := strings.Cut(req, ";"); ok {
					reqs = append(reqs, fmt.Sprintf("%s ; extra == %q and (%s)", name, extra, marker))
				} else {
					reqs = append(reqs, fmt.Sprintf("%s ; extra == %q", req, extra))
				}
			}
		}

		meta.ProvidesExtra = extras
	}

	meta.RequiresDist = reqs

	return nil
}

// readToolTable maps the [tool.pydist] table onto the selection model.
func readToolTable(tool map[string]any) (Selection, error) {
	var sel Selection

	var unknown []string
	for key := range tool {
		if _, ok := knownToolKeys[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)

		return sel, fmt.Errorf("%w: unknown keys in [tool.pydist]: %s", ErrConfig, strings.Join(unknown, ", "))
	}

	includes, err := patternList(tool, "includes")
	if err != nil {
		return sel, err
	}
	if len(includes) == 0 {
		return sel, fmt.Errorf("%w: includes should contain at least one file or directory", ErrConfig)
	}
	sel.Includes = includes

	if sel.Excludes, err = patternList(tool, "excludes"); err != nil {
		return sel, err
	}
	if sel.MetadataFiles, err = patternList(tool, "metadata_files"); err != nil {
		return sel, err
	}
	if sel.SdistExtraIncludes, err = patternList(tool, "sdist_extra_includes"); err != nil {
		return sel, err
	}
	if sel.SdistExtraExcludes, err = patternList(tool, "sdist_extra_excludes"); err != nil {
		return sel, err
	}
	if sel.SdistScripts, err = patternList(tool, "sdist_scripts"); err != nil {
		return sel, err
	}
	if sel.WheelScripts, err = patternList(tool, "wheel_scripts"); err != nil {
		return sel, err
	}

	if raw, ok := tool["wheel_path_prefixes_to_strip"]; ok {
		if sel.WheelPathPrefixesToStrip, err = asStringList(raw, "wheel_path_prefixes_to_strip"); err != nil {
			return sel, err
		}
	}

	if raw, ok := tool["editable_paths"]; ok {
		if sel.EditablePaths, err = asStringList(raw, "editable_paths"); err != nil {
			return sel, err
		}
	}

	return sel, nil
}

// patternList reads and validates one glob pattern list key.
func patternList(tool map[string]any, key string) ([]string, error) {
	raw, ok := tool[key]
	if !ok {
		return nil, nil
	}

	patterns, err := asStringList(raw, key)
	if err != nil {
		return nil, err
	}

	return checkGlobPatterns(patterns, key)
}

// badPatternChars are characters Windows filenames cannot contain, besides
// the glob metacharacters themselves.
var badPatternChars = regexp.MustCompile(`[\x00-\x1f<>:"\\]`)

// checkGlobPatterns validates and normalizes a glob pattern list: patterns
// must be relative, must not escape the base directory, and must not contain
// characters illegal on common filesystems.
func checkGlobPatterns(patterns []string, label string) ([]string, error) {
	normalized := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if badPatternChars.MatchString(pattern) {
			return nil, fmt.Errorf(
				`%w: %s pattern %q contains bad characters (<>:"\ or control characters)`,
				ErrConfig, label, pattern,
			)
		}

		cleaned := path.Clean(strings.TrimSuffix(pattern, "/"))
		if path.IsAbs(cleaned) {
			return nil, fmt.Errorf("%w: %s pattern %q is an absolute path", ErrConfig, label, pattern)
		}
		if cleaned == ".." || strings.HasPrefix(cleaned, "../") || strings.Contains(cleaned, "/../") {
			return nil, fmt.Errorf(
				"%w: %s pattern %q contains relative .. and may point out of the base directory",
				ErrConfig, label, pattern,
			)
		}

		normalized = append(normalized, cleaned)
	}

	return normalized, nil
}

// asString checks that a decoded value is a string.
func asString(raw any, label string) (string, error) {
	value, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s field should be a string, not %T", ErrConfig, label, raw)
	}

	return value, nil
}

// requireString reads a required string key from a table.
func requireString(table map[string]any, key string) (string, error) {
	raw, ok := table[key]
	if !ok {
		return "", fmt.Errorf("%w: %s must be specified under [project]", ErrConfig, key)
	}

	return asString(raw, key)
}

// asStringList checks that a decoded value is a list of strings.
func asStringList(raw any, label string) ([]string, error) {
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s field should be a list of strings", ErrConfig, label)
	}

	values := make([]string, 0, len(list))
	for _, item := range list {
		value, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s field should be a list of strings", ErrConfig, label)
		}

		values = append(values, value)
	}

	return values, nil
}

// asTable checks that a decoded value is a table.
func asTable(raw any, label string) (map[string]any, error) {
	table, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s field should be a table, not %T", ErrConfig, label, raw)
	}

	return table, nil
}

// asStringTable checks that a decoded value is a table with string values.
func asStringTable(raw any, label string) (map[string]string, error) {
	table, err := asTable(raw, label)
	if err != nil {
		return nil, err
	}

	values := make(map[string]string, len(table))
	for key, item := range table {
		value, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%w: [%s] table should have string values", ErrConfig, label)
		}

		values[key] = value
	}

	return values, nil
}
