package query

// topicTriggers maps substrings of the cleaned input text to canonical
// supplemental queries. These bridge topical mentions to the query phrasing
// that prediction markets actually use for them.
var topicTriggers = []TriggerRule{
	{Substrings: []string{"fed", "interest rate"}, Query: "federal reserve interest rate"},
	{Substrings: []string{"powell", "fed chair"}, Query: "federal reserve chair"},
	{Substrings: []string{"bitcoin", "btc", "crypto"}, Query: "bitcoin price"},
	{Substrings: []string{"inflation", "cpi"}, Query: "inflation rate"},
	{Substrings: []string{"lab leak", "wuhan", "covid origin"}, Query: "covid lab leak"},
	{Substrings: []string{"ukraine", "russia", "putin", "zelensky"}, Query: "ukraine russia ceasefire"},
	{Substrings: []string{"artificial intelligence", "agi", "openai", "chatgpt"}, Query: "artificial general intelligence"},
	{Substrings: []string{"elon", "musk"}, Query: "elon musk"},
	{Substrings: []string{"tesla", "self-driving", "autopilot", "robotaxi"}, Query: "tesla full self driving"},
	{Substrings: []string{"taiwan", "china invasion"}, Query: "china taiwan invasion"},
	{Substrings: []string{"recession", "gdp contraction"}, Query: "us recession"},
	{Substrings: []string{"super bowl", "superbowl"}, Query: "super bowl winner"},
	{Substrings: []string{"sbf", "ftx", "bankman"}, Query: "sam bankman fried"},
}
