package manifest

import (
	"encoding/json"
	"fmt"
	"strings"
)

// removePackageJSON edits dependencies/devDependencies in package.json.
// The file is re-marshaled with two-space indent, matching npm's own output.
func removePackageJSON(content []byte, deps, devDeps []string) (*Result, error) {
	var pkg map[string]json.RawMessage
	if err := json.Unmarshal(content, &pkg); err != nil {
		return nil, fmt.Errorf("parse package.json: %w", err)
	}

	res := &Result{Content: content}

	removeFrom := func(section string, names []string) error {
		raw, ok := pkg[section]
		if !ok || len(names) == 0 {
			return nil
		}
		var m map[string]string
		if err := json.Unmarshal(raw, &m); err != nil {
			return fmt.Errorf("parse %s: %w", section, err)
		}
		for _, name := range names {
			if _, ok := m[name]; ok {
				delete(m, name)
				res.Removed = append(res.Removed, name)
				res.Modified = true
			}
		}
		updated, err := json.Marshal(m)
		if err != nil {
			return err
		}
		pkg[section] = updated
		return nil
	}

	// remove_deps targets dependencies, remove_dev_deps targets devDependencies;
	// names listed in remove_deps are also dropped from devDependencies so a
	// dep that moved sections still gets pruned.
	if err := removeFrom("dependencies", deps); err != nil {
		return nil, err
	}
	if err := removeFrom("devDependencies", append(append([]string{}, devDeps...), deps...)); err != nil {
		return nil, err
	}

	if res.Modified {
		out, err := json.MarshalIndent(orderedFromRaw(pkg, content), "", "  ")
		if err != nil {
			return nil, err
		}
		res.Content = append(out, '\n')
	}
	markUnknown(res, append(deps, devDeps...))
	// A dep may appear in both requested lists; dedupe removed.
	res.Removed = dedupe(res.Removed)
	return res, nil
}

// orderedFromRaw rebuilds the top-level object preserving the original key
// order, since json.Marshal of a map would sort keys.
func orderedFromRaw(pkg map[string]json.RawMessage, original []byte) json.Marshaler {
	return orderedJSON{fields: pkg, original: original}
}

type orderedJSON struct {
	fields   map[string]json.RawMessage
	original []byte
}

func (o orderedJSON) MarshalJSON() ([]byte, error) {
	dec := json.NewDecoder(strings.NewReader(string(o.original)))
	// consume opening brace
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	var b strings.Builder
	b.WriteByte('{')
	first := true
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", keyTok)
		}
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
		val, ok := o.fields[key]
		if !ok {
			continue
		}
		if !first {
			b.WriteByte(',')
		}
		first = false
		keyJSON, _ := json.Marshal(key)
		b.Write(keyJSON)
		b.WriteByte(':')
		b.Write(val)
	}
	b.WriteByte('}')
	return []byte(b.String()), nil
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	var out []string
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

// requirementName extracts the package name from a requirements.txt line.
func requirementName(line string) string {
	s := strings.TrimSpace(line)
	if s == "" || strings.HasPrefix(s, "#") || strings.HasPrefix(s, "-") {
		return ""
	}
	for i, r := range s {
		switch r {
		case '=', '<', '>', '~', '!', '[', ';', ' ', '\t':
			return s[:i]
		}
	}
	return s
}

// removeRequirements drops matching requirement lines, leaving every other
// line byte-identical.
func removeRequirements(content []byte, names []string) *Result {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[strings.ToLower(n)] = true
	}

	res := &Result{}
	lines := splitLines(content)
	var kept []string
	for _, line := range lines {
		name := requirementName(line)
		if name != "" && want[strings.ToLower(name)] {
			res.Removed = append(res.Removed, name)
			res.Modified = true
			continue
		}
		kept = append(kept, line)
	}
	res.Content = joinLines(kept)
	if !res.Modified {
		res.Content = content
	}
	markUnknown(res, names)
	return res
}

// removePoetry drops `name = ...` entries from poetry dependency sections.
func removePoetry(content []byte, deps, devDeps []string) *Result {
	names := append(append([]string{}, deps...), devDeps...)
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[strings.ToLower(n)] = true
	}

	depSections := map[string]bool{
		"[tool.poetry.dependencies]":            true,
		"[tool.poetry.dev-dependencies]":        true,
		"[tool.poetry.group.dev.dependencies]":  true,
		"[tool.poetry.group.test.dependencies]": true,
	}

	res := &Result{}
	lines := splitLines(content)
	var kept []string
	inDepSection := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "[") {
			inDepSection = depSections[trimmed]
		} else if inDepSection {
			if name, _, ok := strings.Cut(trimmed, "="); ok {
				name = strings.TrimSpace(strings.Trim(strings.TrimSpace(name), `"`))
				if want[strings.ToLower(name)] {
					res.Removed = append(res.Removed, name)
					res.Modified = true
					continue
				}
			}
		}
		kept = append(kept, line)
	}
	res.Content = joinLines(kept)
	if !res.Modified {
		res.Content = content
	}
	markUnknown(res, names)
	return res
}

// removeGoMod drops require entries for the named module paths.
func removeGoMod(content []byte, names []string) *Result {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}

	res := &Result{}
	lines := splitLines(content)
	var kept []string
	inRequire := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "require ("):
			inRequire = true
		case inRequire && trimmed == ")":
			inRequire = false
		case inRequire || strings.HasPrefix(trimmed, "require "):
			entry := strings.TrimPrefix(trimmed, "require ")
			fields := strings.Fields(entry)
			if len(fields) >= 1 && want[fields[0]] {
				res.Removed = append(res.Removed, fields[0])
				res.Modified = true
				continue
			}
		}
		kept = append(kept, line)
	}
	res.Content = joinLines(kept)
	if !res.Modified {
		res.Content = content
	}
	markUnknown(res, names)
	return res
}

// removePom drops <dependency> blocks whose <artifactId> matches.
func removePom(content []byte, names []string) *Result {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}

	res := &Result{}
	text := string(content)
	var out strings.Builder
	for {
		start := strings.Index(text, "<dependency>")
		if start < 0 {
			out.WriteString(text)
			break
		}
		endTag := "</dependency>"
		end := strings.Index(text[start:], endTag)
		if end < 0 {
			out.WriteString(text)
			break
		}
		end += start + len(endTag)

		artifact := extractXMLValue(text[start:end], "artifactId")
		if artifact != "" && want[artifact] {
			// Consume the line's indentation and trailing newline so no
			// blank line is left behind.
			lineStart := strings.LastIndex(text[:start], "\n") + 1
			if strings.TrimSpace(text[lineStart:start]) == "" {
				start = lineStart
			}
			if end < len(text) && text[end] == '\n' {
				end++
			}
			out.WriteString(text[:start])
			text = text[end:]
			res.Removed = append(res.Removed, artifact)
			res.Modified = true
			continue
		}
		out.WriteString(text[:end])
		text = text[end:]
	}
	res.Content = []byte(out.String())
	if !res.Modified {
		res.Content = content
	}
	markUnknown(res, names)
	return res
}

func extractXMLValue(block, tag string) string {
	open, close := "<"+tag+">", "</"+tag+">"
	i := strings.Index(block, open)
	if i < 0 {
		return ""
	}
	j := strings.Index(block[i:], close)
	if j < 0 {
		return ""
	}
	return strings.TrimSpace(block[i+len(open) : i+j])
}

// gradleConfigs are the dependency configuration keywords we prune from.
var gradleConfigs = []string{
	"implementation", "api", "compileOnly", "runtimeOnly",
	"testImplementation", "testRuntimeOnly", "annotationProcessor",
}

// removeGradle drops dependency declaration lines matching `group:name:version`.
func removeGradle(content []byte, names []string) *Result {
	res := &Result{}
	lines := splitLines(content)
	var kept []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		matched := ""
		for _, cfg := range gradleConfigs {
			if !strings.HasPrefix(trimmed, cfg+" ") && !strings.HasPrefix(trimmed, cfg+"(") {
				continue
			}
			for _, name := range names {
				if strings.Contains(trimmed, ":"+name+":") || strings.HasSuffix(strings.Trim(trimmed, `'")`), ":"+name) {
					matched = name
					break
				}
			}
			break
		}
		if matched != "" {
			res.Removed = append(res.Removed, matched)
			res.Modified = true
			continue
		}
		kept = append(kept, line)
	}
	res.Content = joinLines(kept)
	if !res.Modified {
		res.Content = content
	}
	markUnknown(res, names)
	return res
}

// removeCsproj drops <PackageReference Include="Name" .../> entries.
func removeCsproj(content []byte, names []string) *Result {
	res := &Result{}
	lines := splitLines(content)
	var kept []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		matched := ""
		if strings.HasPrefix(trimmed, "<PackageReference") {
			for _, name := range names {
				if strings.Contains(trimmed, `Include="`+name+`"`) {
					matched = name
					break
				}
			}
		}
		if matched != "" {
			res.Removed = append(res.Removed, matched)
			res.Modified = true
			continue
		}
		kept = append(kept, line)
	}
	res.Content = joinLines(kept)
	if !res.Modified {
		res.Content = content
	}
	markUnknown(res, names)
	return res
}
