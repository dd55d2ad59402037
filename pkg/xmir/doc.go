// Package xmir holds the parsed program tree the rules inspect.
//
// XMIR is the XML form an external parser emits for a source program:
//
//	<program name="foo">
//	  <comments>
//	    <comment line="1"> the first object</comment>
//	  </comments>
//	  <metas>
//	    <meta line="3"><head>alias</head><tail>org.eolang.txt.sprintf</tail><part>org.eolang.txt.sprintf</part></meta>
//	  </metas>
//	  <objects>
//	    <o name="foo" line="2" pos="5"/>
//	  </objects>
//	</program>
//
// Lines are 1-based. The pos attribute of an object is the 0-based column at
// which the object's name starts on its line. Comment text is stored without
// the leading '#' marker.
//
// This package never parses source text. It only decodes XMIR and offers
// typed, read-only views of it.
package xmir
