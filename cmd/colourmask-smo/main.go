// colourmask-smo is a solver plugin serving the built-in SMO trainer.
//
// It is started by colourmask when --solver-plugin points at it and is not
// meant to be run by hand.
package main

import (
	"github.com/jmylchreest/colourmask/internal/plugin/solver"
	"github.com/jmylchreest/colourmask/internal/svm"
	"github.com/jmylchreest/colourmask/pkg/plugin"
)

func main() {
	plugin.Serve(solver.New(
		"smo",
		"C-SVC trained with second-order sequential minimal optimisation",
		svm.NewSMO(),
	))
}
