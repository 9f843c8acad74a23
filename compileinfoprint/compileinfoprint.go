// compileinfoprint is imported by the brainatlas tools for the side effect of
// printing their build banner to os.Stderr
package compileinfoprint

import "github.com/carbocation/brainatlas/compileinfo"

func init() {
	compileinfo.PrintToStdErr()
}
