// Package kml streams KML 2.2 placemark documents.
package kml

import "encoding/xml"

// Namespace is the KML 2.2 namespace written on the root element.
const Namespace = "http://www.opengis.net/kml/2.2"

// DefaultElement is the element that holds one feature.
const DefaultElement = "Placemark"

type placemark struct {
	ID           string        `xml:"id,attr"`
	Name         string        `xml:"name"`
	Description  string        `xml:"description"`
	ExtendedData *extendedData `xml:"ExtendedData"`
	Children     []element     `xml:",any"`
}

// element is any geometry node. Only the fields matching its name are used.
type element struct {
	XMLName     xml.Name
	ID          string     `xml:"id,attr"`
	Coordinates string     `xml:"coordinates"`
	Outer       *boundary  `xml:"outerBoundaryIs"`
	Inner       []boundary `xml:"innerBoundaryIs"`
	Children    []element  `xml:",any"`
}

type boundary struct {
	Ring *element `xml:"LinearRing"`
}

type extendedData struct {
	Data       []data       `xml:"Data"`
	SchemaData []schemaData `xml:"SchemaData"`
}

type data struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value"`
}

type schemaData struct {
	SimpleData []simpleData `xml:"SimpleData"`
}

type simpleData struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

type placemarkOut struct {
	XMLName      xml.Name         `xml:"Placemark"`
	ID           string           `xml:"id,attr,omitempty"`
	Name         string           `xml:"name,omitempty"`
	Description  string           `xml:"description,omitempty"`
	ExtendedData *extendedDataOut `xml:"ExtendedData,omitempty"`
	Geometry     *geometryOut
}

type extendedDataOut struct {
	Data []data `xml:"Data"`
}

type geometryOut struct {
	XMLName     xml.Name
	Coordinates string         `xml:"coordinates,omitempty"`
	Outer       *ringOut       `xml:"outerBoundaryIs,omitempty"`
	Inner       []ringOut      `xml:"innerBoundaryIs,omitempty"`
	Children    []*geometryOut `xml:",omitempty"`
}

type ringOut struct {
	Ring *geometryOut `xml:"LinearRing"`
}
