// Package all registers every supported file format. Importing it for
// side effects enables automatic format detection for all importers:
//
//	import _ "github.com/openepr/cwepr/format/all"
package all

import (
	_ "github.com/openepr/cwepr/format/bes3t"
	_ "github.com/openepr/cwepr/format/magnettech"
	_ "github.com/openepr/cwepr/format/niehs"
	_ "github.com/openepr/cwepr/format/txtfile"
	_ "github.com/openepr/cwepr/format/winepr"
)
