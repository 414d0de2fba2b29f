// colourmask builds binary masks from images by picking colours.
//
// Foreground is described either by reference colours and a distance
// threshold, or by positive and negative samples fed to a kernel SVM.
package main

import (
	"github.com/jmylchreest/colourmask/internal/cli"
)

func main() {
	cli.Execute()
}
