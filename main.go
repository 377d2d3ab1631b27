// SPDX-License-Identifier: MPL-2.0

package main

import "github.com/conbuild/conbuild/cmd/conbuild"

func main() {
	cmd.Execute()
}
