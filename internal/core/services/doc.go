// Package services implements the ingestion, retrieval, and catalog
// pipelines behind the driving ports. Services receive their
// infrastructure dependencies through constructors and hold no other
// state, so each HTTP request flows through them independently.
package services
