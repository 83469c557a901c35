package backend

import "github.com/xeipuuv/gojsonschema"

// Minimal shape checks for each service response. A response that
// passes its schema still goes through full decoding; the schemas only
// guard the fields the orchestrator's control flow depends on.

const parseSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["source_type", "problem_summary", "raw_text"],
  "properties": {
    "source_type": { "type": "string" },
    "problem_summary": { "type": "string" },
    "urgency": { "type": "string" },
    "entities": { "type": "array" },
    "raw_text": { "type": "string" }
  }
}`

const historyMatchSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["matched_cases"],
  "properties": {
    "matched_cases": { "type": "array" },
    "total_candidates": { "type": "integer" }
  }
}`

const enrichSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["retrieved_sops", "retrieval_summary"],
  "properties": {
    "retrieved_sops": { "type": "array" },
    "retrieval_summary": { "type": "string" },
    "total_sops_found": { "type": "integer" }
  }
}`

const planSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["plan", "success"],
  "properties": {
    "plan": { "type": "array", "items": { "type": "string" } },
    "success": { "type": "boolean" },
    "message": { "type": ["string", "null"] }
  }
}`

const executeSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["status", "step", "step_description"],
  "properties": {
    "status": { "type": "string" },
    "step": { "type": "integer" },
    "step_description": { "type": "string" },
    "tool_output": { "type": ["string", "null"] },
    "state_token": { "type": ["string", "null"] },
    "completed_steps": { "type": ["array", "null"] }
  }
}`

const approveSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["success", "message"],
  "properties": {
    "success": { "type": "boolean" },
    "message": { "type": "string" }
  }
}`

const summarySchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["success"],
  "properties": {
    "success": { "type": "boolean" },
    "incident_id": { "type": "string" }
  }
}`

var (
	parseSchemaLoader        = gojsonschema.NewStringLoader(parseSchemaJSON)
	historyMatchSchemaLoader = gojsonschema.NewStringLoader(historyMatchSchemaJSON)
	enrichSchemaLoader       = gojsonschema.NewStringLoader(enrichSchemaJSON)
	planSchemaLoader         = gojsonschema.NewStringLoader(planSchemaJSON)
	executeSchemaLoader      = gojsonschema.NewStringLoader(executeSchemaJSON)
	approveSchemaLoader      = gojsonschema.NewStringLoader(approveSchemaJSON)
	summarySchemaLoader      = gojsonschema.NewStringLoader(summarySchemaJSON)
)
