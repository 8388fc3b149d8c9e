package transform

// defaultVocabulary lists the framework identifiers the host exposes on its
// global namespace object.
var defaultVocabulary = []string{
	"useState",
	"useEffect",
	"useContext",
	"useReducer",
	"useCallback",
	"useMemo",
	"useRef",
	"useImperativeHandle",
	"useLayoutEffect",
	"useDebugValue",
	"useDeferredValue",
	"useTransition",
	"useId",
	"useSyncExternalStore",
	"useInsertionEffect",
	"createElement",
	"Fragment",
	"Component",
	"PureComponent",
	"createContext",
	"forwardRef",
	"lazy",
	"memo",
	"startTransition",
	"createRef",
}

// defaultFrameworkPackages are provided by the host, so imports from them are dropped.
var defaultFrameworkPackages = []string{"preact", "preact/hooks", "react"}

// DefaultVocabulary returns a copy of the built-in framework identifier list.
func DefaultVocabulary() []string {
	return append([]string(nil), defaultVocabulary...)
}

// DefaultFrameworkPackages returns a copy of the built-in framework package list.
func DefaultFrameworkPackages() []string {
	return append([]string(nil), defaultFrameworkPackages...)
}

// Set is an immutable set of names.
type Set map[string]struct{}

// NewSet builds a Set from names.
func NewSet(names ...string) Set {
	s := make(Set, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}

	return s
}

// Has reports whether name is in the set.
func (s Set) Has(name string) bool {
	_, ok := s[name]

	return ok
}
