// Command rosterctl classifies roster workbooks offline.
//
//	rosterctl process Bron.xlsx -o Modified_Bron.xlsx
//	rosterctl check Bron.xlsx
package main
