package container

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ty-larkin/illumine/framework/support"
)

// Inspect renders the container's registrations as a multi-line report —
// bindings, instances, aliases, method bindings and signatures, including
// anything inherited through Fork. Debug aid only; the output format is not
// stable.
//
//	fmt.Print(c.Inspect())
func (c *Container) Inspect() string {
	var b strings.Builder

	keys := c.Bindings()
	sort.Strings(keys)
	b.WriteString(fmt.Sprintf("container: %d abstracts\n", len(keys)))
	for _, key := range keys {
		kind := "binding"
		if _, ok := c.findInstance(key); ok {
			kind = "instance"
		} else if bd, _ := c.findBinding(key); bd != nil && bd.singleton {
			kind = "singleton"
		}
		b.WriteString(fmt.Sprintf("  [%s] %s\n", kind, key))
	}

	aliases := c.collectAliases()
	if len(aliases) > 0 {
		b.WriteString("aliases:\n")
		names := make([]string, 0, len(aliases))
		for alias := range aliases {
			names = append(names, alias)
		}
		sort.Strings(names)
		for _, alias := range names {
			b.WriteString(fmt.Sprintf("  %s -> %s\n", alias, aliases[alias]))
		}
	}

	methods, signatures := c.collectCallables()
	if len(methods) > 0 {
		sort.Strings(methods)
		b.WriteString("method bindings:\n")
		for _, key := range methods {
			b.WriteString(fmt.Sprintf("  %s\n", key))
		}
	}
	if len(signatures) > 0 {
		sort.Strings(signatures)
		b.WriteString("signatures:\n")
		for _, key := range signatures {
			b.WriteString(fmt.Sprintf("  %s%s\n", key, formatSignature(c.Signature(key))))
		}
	}

	return b.String()
}

// InspectInstance renders a resolved instance with full nesting.
func (c *Container) InspectInstance(abstract string) string {
	v, err := c.Make(abstract)
	if err != nil {
		return fmt.Sprintf("container: %v\n", err)
	}
	return support.Sdump(v)
}

func (c *Container) collectAliases() map[string]string {
	out := make(map[string]string)
	for cur := c; cur != nil; cur = cur.parent {
		cur.mu.RLock()
		for alias, target := range cur.aliases {
			if _, ok := out[alias]; !ok {
				out[alias] = target
			}
		}
		cur.mu.RUnlock()
	}
	return out
}

func (c *Container) collectCallables() (methods, signatures []string) {
	seenM := make(map[string]bool)
	seenS := make(map[string]bool)
	for cur := c; cur != nil; cur = cur.parent {
		cur.mu.RLock()
		for key := range cur.methodBindings {
			if !seenM[key] {
				seenM[key] = true
				methods = append(methods, key)
			}
		}
		for key := range cur.signatures {
			if !seenS[key] {
				seenS[key] = true
				signatures = append(signatures, key)
			}
		}
		cur.mu.RUnlock()
	}
	return methods, signatures
}

func formatSignature(params []Param) string {
	parts := make([]string, len(params))
	for i, p := range params {
		name := p.Name
		if name == "" {
			name = "_"
		}
		if p.Optional {
			name += fmt.Sprintf(" = %v", p.Default)
		}
		parts[i] = name
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
