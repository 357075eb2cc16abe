package registry

import (
	"fmt"
	"strings"
)

// Mode distinguishes a plain listing from a name search.
type Mode int

const (
	ModeList Mode = iota
	ModeSearch
)

func (m Mode) String() string {
	if m == ModeSearch {
		return "search"
	}
	return "list"
}

// Protocol filters agents by advertised endpoint.
type Protocol string

const (
	ProtocolAny Protocol = ""
	ProtocolMCP Protocol = "mcp"
	ProtocolA2A Protocol = "a2a"
)

func (p Protocol) String() string {
	if p == ProtocolAny {
		return "none"
	}
	return string(p)
}

// agentFields selects an agent with its full registration file. The index
// names the payment flag x402support; it is aliased to x402Support.
const agentFields = `
    id
    agentId
    chainId
    owner
    operators
    agentURI
    createdAt
    updatedAt
    totalFeedback
    lastActivity
    registrationFile {
      name
      description
      image
      active
      x402Support: x402support
      supportedTrusts
      mcpEndpoint
      mcpVersion
      mcpTools
      mcpPrompts
      mcpResources
      a2aEndpoint
      a2aVersion
      a2aSkills
      ens
      did
    }`

type templateKey struct {
	mode     Mode
	protocol Protocol
}

type template struct {
	name string
	text string
}

// templates holds one query per (mode, protocol) pair.
var templates = map[templateKey]template{
	{ModeList, ProtocolAny}:   listTemplate("GetAgents", ""),
	{ModeList, ProtocolMCP}:   listTemplate("GetAgentsMCP", "mcpEndpoint_not: null"),
	{ModeList, ProtocolA2A}:   listTemplate("GetAgentsA2A", "a2aEndpoint_not: null"),
	{ModeSearch, ProtocolAny}: searchTemplate("SearchAgents", ""),
	{ModeSearch, ProtocolMCP}: searchTemplate("SearchAgentsMCP", "mcpEndpoint_not: null"),
	{ModeSearch, ProtocolA2A}: searchTemplate("SearchAgentsA2A", "a2aEndpoint_not: null"),
}

func listTemplate(name, predicate string) template {
	where := ""
	if predicate != "" {
		where = fmt.Sprintf(", where: { registrationFile_: { %s } }", predicate)
	}
	text := fmt.Sprintf(`query %s($first: Int!, $skip: Int!, $orderBy: Agent_orderBy!, $orderDirection: OrderDirection!) {
  agents(first: $first, skip: $skip, orderBy: $orderBy, orderDirection: $orderDirection%s) {%s
  }
}`, name, where, agentFields)
	return template{name: name, text: text}
}

func searchTemplate(name, predicate string) template {
	filters := []string{"name_contains_nocase: $nameContains"}
	if predicate != "" {
		filters = append(filters, predicate)
	}
	text := fmt.Sprintf(`query %s($first: Int!, $skip: Int!, $nameContains: String!) {
  agents(where: { registrationFile_: { %s } }, first: $first, skip: $skip, orderBy: createdAt, orderDirection: desc) {%s
  }
}`, name, strings.Join(filters, ", "), agentFields)
	return template{name: name, text: text}
}

const detailQueryName = "GetAgentWithFeedback"

// detailQuery fetches the agent, its recent feedback and its stats as
// sibling roots of one document so both halves read the same index state.
var detailQuery = fmt.Sprintf(`query %s($id: ID!, $feedbackFirst: Int!) {
  agent(id: $id) {%s
    feedback(where: { isRevoked: false }, orderBy: createdAt, orderDirection: desc, first: $feedbackFirst) {
      id
      value
      tag1
      tag2
      clientAddress
      createdAt
      isRevoked
      feedbackFile {
        text
        mcpTool
        mcpPrompt
        mcpResource
        a2aSkills
        a2aContextId
        a2aTaskId
      }
      responses {
        id
        responder
        responseUri
        createdAt
      }
    }
  }
  agentStats(id: $id) {
    totalFeedback
    averageScore
    scoreDistribution
    totalValidations
    completedValidations
    lastActivity
  }
}`, detailQueryName, agentFields)
