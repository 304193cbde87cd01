package api

import (
	"fmt"
	"io"
	"sort"

	"github.com/rodaine/table"
)

// Dump renders the et namespace, functions first.
func Dump(w io.Writer) {
	t := table.New("Name", "Kind", "Value").WithWriter(w)
	names := FunctionNames()
	sort.Strings(names)
	for _, name := range names {
		t.AddRow(fmt.Sprintf("%s.%s", Namespace, name), "function", "")
	}
	for _, c := range Constants {
		t.AddRow(fmt.Sprintf("%s.%s", Namespace, c.Name), "constant", c.Value)
	}
	t.Print()
}
