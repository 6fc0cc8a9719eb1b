package callgraph

import "strings"

// Built-in pseudo-functions that never form call edges.
var defaultBuiltins = []string{
	"assert",
	"assert_eq",
	"move_to",
	"move_from",
	"borrow_global",
	"borrow_global_mut",
	"exists",
	"freeze",
	"old",
	"update_field",
	"TRACE",
}

// Library modules whose functions are not business logic.
var defaultStdModules = []string{
	"vector", "option", "string", "ascii", "bcs", "hash", "debug", "type_name",
	"address", "u8", "u16", "u32", "u64", "u128", "u256", "fixed_point32",
	"bit_vector", "object", "transfer", "tx_context", "coin", "balance", "event",
	"table", "bag", "dynamic_field", "dynamic_object_field", "clock", "math",
	"sui", "package", "display", "url", "vec_map", "vec_set", "object_table",
	"linked_table", "table_vec", "priority_queue", "types", "signer", "error",
}

// Framework namespaces for address::module::name calls.
var defaultStdAddresses = []string{
	"std", "sui", "sui_system", "aptos_std", "aptos_framework", "deepbook", "bridge",
	"0x1", "0x2", "0x3",
}

var defaultAccessorPrefixes = []string{"get_", "is_", "has_"}

// Method names treated as property reads rather than calls.
var defaultAccessors = []string{
	"id", "uid", "value", "length", "len", "size", "balance", "owner", "name",
}

// Rules holds the filtering tables. The zero value uses the defaults only.
type Rules struct {
	Builtins     []string
	StdModules   []string
	StdAddresses []string
	Accessors    []string
}

type ruleSet struct {
	builtins     map[string]struct{}
	stdModules   map[string]struct{}
	stdAddresses map[string]struct{}
	accessors    map[string]struct{}
}

// compile merges the extra entries in r with the defaults.
func (r Rules) compile() ruleSet {
	return ruleSet{
		builtins:     toSet(defaultBuiltins, r.Builtins),
		stdModules:   toSet(defaultStdModules, r.StdModules),
		stdAddresses: toSet(defaultStdAddresses, lowerAll(r.StdAddresses)),
		accessors:    toSet(defaultAccessors, r.Accessors),
	}
}

func (s ruleSet) isBuiltin(name string) bool {
	_, ok := s.builtins[name]
	return ok
}

func (s ruleSet) isStdModule(name string) bool {
	_, ok := s.stdModules[name]
	return ok
}

func (s ruleSet) isStdAddress(addr string) bool {
	_, ok := s.stdAddresses[strings.ToLower(addr)]
	return ok
}

func (s ruleSet) isAccessor(method string) bool {
	for _, prefix := range defaultAccessorPrefixes {
		if strings.HasPrefix(method, prefix) {
			return true
		}
	}
	_, ok := s.accessors[method]
	return ok
}

func toSet(groups ...[]string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, group := range groups {
		for _, item := range group {
			item = strings.TrimSpace(item)
			if item != "" {
				set[item] = struct{}{}
			}
		}
	}
	return set
}

func lowerAll(items []string) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = strings.ToLower(item)
	}
	return out
}
