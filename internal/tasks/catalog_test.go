// SPDX-License-Identifier: MPL-2.0

package tasks

import (
	"slices"
	"testing"
)

func TestNewRegistry(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(NewDefaults(p("/repo")))

	want := []string{CMakeBuildTask, CMakeConfigureTask, CMakeInstallTask, ConanInstallTask, CleanTask}
	if got := reg.Names(); !slices.Equal(got, want) {
		t.Errorf("Names() = %q, want %q", got, want)
	}

	for _, def := range reg.All() {
		if def.Doc == "" {
			t.Errorf("%s has no doc", def.Name)
		}
		if err := def.Validate(); err != nil {
			t.Errorf("%s invalid: %v", def.Name, err)
		}
	}
}

func TestParamFlags(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(NewDefaults(p("/repo")))
	def, ok := reg.Lookup(CMakeConfigureTask)
	if !ok {
		t.Fatal("cmake-configure not registered")
	}

	wantFlags := map[string][2]string{
		ParamHomeFolder:   {"h", "home-folder"},
		ParamOutputFolder: {"o", "output-folder"},
		ParamBuildType:    {"t", "build-type"},
	}
	for name, flags := range wantFlags {
		param, ok := def.Param(name)
		if !ok {
			t.Errorf("%s missing param %s", def.Name, name)
			continue
		}
		if param.Short != flags[0] || param.Long != flags[1] {
			t.Errorf("%s flags = -%s/--%s, want -%s/--%s", name, param.Short, param.Long, flags[0], flags[1])
		}
	}

	if home, _ := def.Param(ParamHomeFolder); home.Default != p("/repo") {
		t.Errorf("home_folder default = %v, want %s", home.Default, p("/repo"))
	}

	clean, _ := reg.Lookup(CleanTask)
	outDir, ok := clean.Param(ParamOutDir)
	if !ok || outDir.Short != "O" || outDir.Default != true {
		t.Errorf("out_dir param = %+v", outDir)
	}
}
