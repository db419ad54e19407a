package rules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quaylabs/repolint/pkg/lint/rules"
)

const testHeader = "SPDX-License-Identifier: MIT OR Apache-2.0"

func TestLicenseHeader(t *testing.T) {
	rule := rules.NewLicenseHeader(testHeader + "\n")
	project := testProject(t, emptyGraph(t))

	tests := []struct {
		name    string
		path    string
		content string
		skipped bool
		wantErr bool
	}{
		{
			name:    "go file with header",
			path:    "main.go",
			content: "// " + testHeader + "\n\npackage main\n",
		},
		{
			name:    "go file missing header",
			path:    "main.go",
			content: "package main\n",
			wantErr: true,
		},
		{
			name:    "header within opening comment block",
			path:    "main.go",
			content: "// Copyright 2026 Quay Labs\n// " + testHeader + "\n\npackage main\n",
		},
		{
			name:    "shell script with shebang",
			path:    "scripts/build.sh",
			content: "#!/bin/bash\n# " + testHeader + "\n\nset -e\n",
		},
		{
			name:    "python script missing header",
			path:    "tools/gen.py",
			content: "import sys\n",
			wantErr: true,
		},
		{
			name:    "unsupported extension skipped",
			path:    "README.md",
			content: "# readme\n",
			skipped: true,
		},
		{
			name:    "no extension skipped",
			path:    "Makefile",
			content: "all:\n",
			skipped: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msgs, skipped := runContent(t, rule, project, tt.path, tt.content)
			assert.Equal(t, tt.skipped, skipped)
			if tt.wantErr {
				require.Len(t, msgs, 1)
				assert.Equal(t, "missing license header", msgs[0].Text)
			} else {
				assert.Empty(t, msgs)
			}
		})
	}
}

func TestLicenseHeader_EmptyHeaderNeverFires(t *testing.T) {
	rule := rules.NewLicenseHeader("")
	project := testProject(t, emptyGraph(t))

	msgs, skipped := runContent(t, rule, project, "main.go", "package main\n")
	assert.False(t, skipped)
	assert.Empty(t, msgs)
}
