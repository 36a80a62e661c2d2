package seed

import (
	"fmt"

	"github.com/ZanzyTHEbar/candidate-evaluator/internal/rubric"
)

const crisisResponse = `As %s, my first hour would look like this:

1. Containment (0-15 min)
   - Declare a severity one incident and open a war room channel
   - Pull live error rates and payment volume to size the outage
   - Start root cause analysis while preparing a rollback

2. Communication
   - Status page updates every 15 minutes
   - Customer banner and email with an honest ETA
   - A short holding statement for press inquiries

3. Recovery (15-60 min)
   - Roll back or ship the smallest safe fix
   - Verify replication and payment reconciliation before reopening traffic

4. Afterwards
   - Blameless review within 24 hours with owners for every action item`

const sustainabilityResponse = `As %s, stepping in as VP of Sustainability:

1. Root causes
   - Water use is driven by dyeing and finishing processes
   - Supply chain transparency stops at tier one suppliers
   - There is no take-back channel for customers

2. Priorities
   - Tier two and three supplier mapping within 12 months
   - Water recycling at the two largest facilities
   - A customer take-back and resale pilot

3. Goals
   - 50%% less water per garment in three years
   - Published supplier list and audit results every quarter

4. Business case
   - Premium line margins and lower regulatory risk fund the first phase`

const teamResponse = `As %s, my 90 day plan for the team:

1. Listen (weeks 1-2)
   - Confidential one on ones with everyone, including exit conversations
   - Review the last quarter of incidents and pull requests

2. Quick wins (days 1-30)
   - A short daily sync across time zones
   - Document the three systems only departed engineers understood

3. Rebuild (days 30-90)
   - Realistic sprint commitments and visible recognition
   - Career conversations and a hiring plan for the open roles

4. Measure
   - Delivery predictability, review turnaround and engagement pulse scores`

// MockResponse returns a canned answer to promptID written as name.
func MockResponse(promptID, name string) string {
	switch promptID {
	case rubric.PromptCrisis:
		return fmt.Sprintf(crisisResponse, name)
	case rubric.PromptSustainability:
		return fmt.Sprintf(sustainabilityResponse, name)
	case rubric.PromptTeam:
		return fmt.Sprintf(teamResponse, name)
	default:
		return fmt.Sprintf("%s did not answer this prompt.", name)
	}
}
