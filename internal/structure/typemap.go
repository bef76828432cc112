package structure

import (
	"fmt"
	"html/template"
	"io"
	"os"
)

var typeMapTemplate = template.Must(template.New("typemap").Parse(`<html>
<head><title>PQR Typemap</title></head>
<body>
<h3>This is a developmental page including the atom type for the atoms in the PQR file.</h3>
<table border="1" cellpadding="2">
<tr><th>Atom Number</th><th>Atom Name</th><th>Residue Name</th><th>Chain ID</th><th>State</th><th>Element</th><th>Charge</th><th>Radius</th></tr>
{{- range .}}
<tr><td>{{.Serial}}</td><td>{{.Name}}</td><td>{{.Residue}}</td><td>{{.Chain}}</td><td>{{.State}}</td><td>{{.Element}}</td><td>{{printf "%.4f" .Charge}}</td><td>{{printf "%.4f" .Radius}}</td></tr>
{{- end}}
</table>
</body>
</html>
`))

type typeMapRow struct {
	Serial                               int
	Name, Residue, Chain, State, Element string
	Charge, Radius                       float64
}

// RenderTypeMap writes an HTML table of every atom with its residue
// state, element, charge and radius.
func (s *Structure) RenderTypeMap(w io.Writer) error {
	rows := make([]typeMapRow, 0, s.NumAtoms())
	for _, a := range s.Atoms() {
		rows = append(rows, typeMapRow{
			Serial:  a.Serial,
			Name:    a.Name,
			Residue: a.Residue.Name,
			Chain:   a.Residue.ChainID,
			State:   a.Residue.State,
			Element: a.Element,
			Charge:  a.Charge,
			Radius:  a.Radius,
		})
	}
	return typeMapTemplate.Execute(w, rows)
}

// WriteTypeMap renders the type map to a file.
func (s *Structure) WriteTypeMap(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create type map %s: %w", path, err)
	}
	defer f.Close()

	if err := s.RenderTypeMap(f); err != nil {
		return fmt.Errorf("failed to render type map: %w", err)
	}
	return nil
}
