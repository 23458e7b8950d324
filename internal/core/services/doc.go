// Package services contains the business logic implementations (the hexagon core).
//
// Services implement the driving ports and depend only on driven port
// interfaces, never on concrete adapters. The pipeline is composed of:
//
//   - CorpusBuilder: turns the marketplace taxonomy into an embedding corpus
//   - Retriever: nearest-neighbour category retrieval for a product
//   - Disambiguator: LLM-backed selection among retrieved candidates
//   - AspectFiller: LLM-backed extraction of category aspect values
//   - RequirementsCache: per-run memoization of aspect schemas
//   - Resolver: the batch driver tying the stages together
package services
