// Package lexical scores how well a query's words appear in a document's text.
//
// A query is reduced to its meaningful terms: lower-cased tokens split on
// anything that is not a letter or digit, with stop words and tokens of two
// runes or fewer removed. Match reports whether the whole query appears
// verbatim and what fraction of the meaningful terms occur anywhere in the
// document.
package lexical
