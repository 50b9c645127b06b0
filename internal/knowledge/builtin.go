package knowledge

import (
	"embed"
	"fmt"
	"path"
)

//go:embed docs/*.md
var builtinFS embed.FS

// Folder IDs.
const (
	FolderUser         = "folder_user_files"
	FolderExamples     = "folder_ejemplos"
	FolderFundamentals = "folder_fundamentos"
)

type builtinFolder struct {
	id        string
	name      string
	protected bool
	docs      []builtinDoc
}

type builtinDoc struct {
	id   string
	name string
	file string
}

var builtinTree = []builtinFolder{
	{id: FolderUser, name: "Mis archivos"},
	{id: FolderExamples, name: "Ejemplos Prácticos", docs: []builtinDoc{
		{"file_caso_1", "Caso 1: Organización Defensoras", "caso_1.md"},
		{"file_caso_2", "Caso 2: Organización Feminista", "caso_2.md"},
		{"file_caso_3", "Caso 3: Colectivo Ambientalista", "caso_3.md"},
	}},
	{id: FolderFundamentals, name: "Fundamentos Teóricos", protected: true, docs: []builtinDoc{
		{"file_jurist", "Metodología JURIST", "jurist.md"},
		{"file_intro", "Introducción al Modelado", "intro.md"},
		{"file_proactivo", "Enfoque Proactivo y Adaptativo", "proactivo.md"},
	}},
}

func readBuiltin(file string) (string, error) {
	data, err := builtinFS.ReadFile(path.Join("docs", file))
	if err != nil {
		return "", fmt.Errorf("read builtin %s: %w", file, err)
	}
	return string(data), nil
}
