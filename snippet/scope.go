package snippet

// Scope holds the variables assigned by block snippets ({! ... !}) within
// a single source file.
type Scope struct {
	file string
	vars map[string]string
}

func newScope(file string) *Scope {
	return &Scope{file: file, vars: make(map[string]string)}
}

func (s *Scope) Set(name, value string) {
	s.vars[name] = value
}

func (s *Scope) Get(name string) (string, bool) {
	v, ok := s.vars[name]
	return v, ok
}

// Store owns every file's Scope for the lifetime of a compilation run and
// resolves cross-file references of the form "path/to/file.varname".
type Store struct {
	scopes map[string]*Scope
}

func NewStore() *Store {
	return &Store{scopes: make(map[string]*Scope)}
}

// Scope returns (creating if necessary) the scope for the given file.
func (st *Store) Scope(file string) *Scope {
	sc, ok := st.scopes[file]
	if !ok {
		sc = newScope(file)
		st.scopes[file] = sc
	}
	return sc
}

// Resolve looks up name first in the local scope, then — if name contains
// a dotted file reference, e.g. "mathlib.PI" — in the named file's scope.
func (st *Store) Resolve(local *Scope, name string) (string, bool) {
	if v, ok := local.Get(name); ok {
		return v, true
	}
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] != '.' {
			continue
		}
		file, ident := name[:i], name[i+1:]
		if sc, ok := st.scopes[file]; ok {
			if v, ok := sc.Get(ident); ok {
				return v, true
			}
		}
	}
	return "", false
}
