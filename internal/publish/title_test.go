// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package publish

import "testing"

func TestNormalizeCompanyName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`ООО «Ромашка»`, "Ромашка"},
		{`Общество с ограниченной ответственностью "Вектор Плюс"`, "Вектор Плюс"},
		{`АО Тандер`, "Тандер"},
		{`ПАО Сбербанк`, "Сбербанк"},
		{`Ромашка (ООО)`, "Ромашка"},
		{`Ромашка, ООО`, "Ромашка"},
		{`Acme LLC`, "Acme LLC"},
		{`LLC Acme`, "Acme"},
		{`«Северсталь»`, "Северсталь"},
		{`Ромашка`, "Ромашка"},
		{`  padded name  `, "padded name"},
		{``, ""},
		// Stripping everything falls back to the trimmed original.
		{`ООО`, "ООО"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := NormalizeCompanyName(tt.in); got != tt.want {
				t.Errorf("NormalizeCompanyName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
