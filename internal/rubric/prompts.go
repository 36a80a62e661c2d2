package rubric

var catalog = []Rubric{
	{
		ID:          PromptCrisis,
		Name:        "Crisis Management",
		Description: "Evaluate crisis decision-making and problem-solving under pressure",
		Prompt: `You are the head of operations at a fintech startup. A critical system outage has occurred affecting 50,000 users.

Scenario Details:
- Payment processing is down for 45 minutes
- Customers are unable to access their accounts
- Media is starting to pick up the story
- Your engineering team is investigating but the root cause is unclear
- You have 5 minutes to make initial decisions

Please respond with:
1. Your immediate actions (next 15 minutes)
2. Communication strategy (internal and external)
3. Timeline for resolution attempts
4. Risk mitigation steps
5. Post-incident analysis plan

Provide a detailed, structured response as if you were actually facing this crisis.`,
		Categories: Categories{
			{Key: "decisionMaking", Name: "Decision Making Under Pressure", MaxScore: 20, Criteria: []string{
				"Prioritizes critical actions immediately",
				"Makes decisions with incomplete information",
				"Shows logical reasoning",
				"Avoids panic or emotional responses",
			}},
			{Key: "communication", Name: "Communication Strategy", MaxScore: 20, Criteria: []string{
				"Clear internal communication plan",
				"Appropriate external messaging",
				"Considers stakeholder needs",
				"Transparent about limitations",
			}},
			{Key: "technicalAcumen", Name: "Technical Understanding", MaxScore: 20, Criteria: []string{
				"Demonstrates system knowledge",
				"Asks right diagnostic questions",
				"Understands escalation procedures",
				"Considers technical constraints",
			}},
			{Key: "leadership", Name: "Leadership & Team Management", MaxScore: 20, Criteria: []string{
				"Delegates effectively",
				"Empowers team members",
				"Maintains composure",
				"Sets clear expectations",
			}},
			{Key: "completeness", Name: "Response Completeness", MaxScore: 20, Criteria: []string{
				"Addresses all scenario aspects",
				"Provides specific examples",
				"Includes timelines",
				"Considers long-term impact",
			}},
		},
	},
	{
		ID:          PromptSustainability,
		Name:        "Sustainability & Social Impact",
		Description: "Evaluate understanding of sustainable business practices and social responsibility",
		Prompt: `You are joining a company as VP of Sustainability. The company is a fast-fashion retailer facing criticism for:
- High water consumption in manufacturing (15,000 liters per garment)
- Limited supply chain transparency
- Minimal recycling initiatives
- Labor concerns in overseas factories
- Carbon footprint of ~5kg CO2 per shipped item

You have a budget of $10M over 3 years to address these issues.

Please provide:
1. Root cause analysis of sustainability issues
2. Your top 5 priorities for the 3-year plan
3. Specific, measurable goals for each priority
4. Implementation timeline and dependencies
5. Expected business impact (costs/benefits)
6. How you would measure success
7. Stakeholder engagement strategy

Think strategically about what matters most and why.`,
		Categories: Categories{
			{Key: "analysis", Name: "Problem Analysis", MaxScore: 15, Criteria: []string{
				"Identifies root causes",
				"Understands interconnected issues",
				"Considers systemic challenges",
				"Shows systems thinking",
			}},
			{Key: "prioritization", Name: "Strategic Prioritization", MaxScore: 20, Criteria: []string{
				"Prioritizes high-impact initiatives",
				"Considers resource constraints",
				"Balances short and long-term goals",
				"Shows strategic thinking",
			}},
			{Key: "innovation", Name: "Innovation & Creativity", MaxScore: 20, Criteria: []string{
				"Proposes novel solutions",
				"Creative problem-solving",
				"Business model innovation",
				"Technology leveraging",
			}},
			{Key: "measurement", Name: "Measurement & Accountability", MaxScore: 20, Criteria: []string{
				"Clear, measurable KPIs",
				"Realistic targets",
				"Monitoring mechanisms",
				"Accountability structures",
			}},
			{Key: "businessAcumen", Name: "Business Understanding", MaxScore: 25, Criteria: []string{
				"Understands cost-benefit",
				"Considers competitive advantage",
				"Shows financial awareness",
				"Balances profit with purpose",
				"Considers market dynamics",
			}},
		},
	},
	{
		ID:          PromptTeam,
		Name:        "Team Building & Collaboration",
		Description: "Evaluate ability to build high-performing teams and foster collaboration",
		Prompt: `You've been hired as a new Engineering Manager for a 12-person team at a SaaS company.

Current Situation:
- Team is distributed across 3 time zones
- Recent product launch was delayed by 2 months
- Morale is low due to crunch period
- There's tension between frontend and backend developers
- Some team members are underperforming
- Two strong performers just gave notice
- The team has no documented processes or knowledge base
- Communication is fragmented across Slack, email, and Jira

Your first 90 days:

Please outline:
1. Diagnostic approach (how you'd assess the team)
2. Quick wins (first 30 days) to build trust
3. Process improvements to implement
4. How you'd address the departing talent
5. Strategy to rebuild morale
6. Team structure and role clarifications
7. Metrics for success
8. Long-term vision for the team

Show me how you'd thoughtfully approach this complex people problem.`,
		Categories: Categories{
			{Key: "empathy", Name: "Empathy & Listening", MaxScore: 15, Criteria: []string{
				"Recognizes team struggles",
				"Shows empathy for challenges",
				"Commits to listening",
				"Validates concerns",
			}},
			{Key: "diagnostics", Name: "Diagnostic Approach", MaxScore: 20, Criteria: []string{
				"Systematic assessment plan",
				"One-on-one engagement",
				"Data-driven decision making",
				"Identifies root causes",
			}},
			{Key: "execution", Name: "Execution & Quick Wins", MaxScore: 20, Criteria: []string{
				"Identifies achievable short-term goals",
				"Builds momentum quickly",
				"Shows operational excellence",
				"Delivers results",
			}},
			{Key: "culture", Name: "Culture & Trust Building", MaxScore: 20, Criteria: []string{
				"Creates psychological safety",
				"Promotes collaboration",
				"Addresses conflict constructively",
				"Models desired behaviors",
			}},
			{Key: "development", Name: "Team Development Strategy", MaxScore: 25, Criteria: []string{
				"Plans for growth and learning",
				"Addresses performance issues",
				"Retains top talent",
				"Creates clear career paths",
				"Invests in team capabilities",
			}},
		},
	},
}
