package content

// pools holds the phrase pools for each niche.
var pools = map[Niche]nichePools{
	Anxiety: {
		Hooks: []string{
			"You're not lazy. Your brain is just in survival mode.",
			"If your brain feels like a browser with 47 tabs open, this is for you.",
			"Anxiety isn't weakness. It's your nervous system trying to protect you.",
			"You're not overthinking. You're trying to control the uncontrollable.",
			"That chest tightness? Your body is storing worry you haven't processed.",
			"If you rehearse conversations that might never happen, this is for you.",
			"Anxiety makes you think you're in danger when you're actually safe.",
			"Your racing thoughts at 3am? That's anxiety, not intuition.",
			"If you feel guilty for having a good day, your nervous system is hypervigilant.",
			"You're not 'too sensitive.' You're responding to real overwhelm.",
		},
		Validations: []string{
			"It's not your fault that your brain learned to scan for danger.",
			"Your anxiety makes perfect sense given what you've been through.",
			"You're not broken. You're a human with a very human response to stress.",
			"Your nervous system is doing exactly what it was designed to do.",
			"Feeling anxious doesn't mean you're doing anything wrong.",
			"Your body is trying to protect you, even when there's no real threat.",
			"It's normal to feel anxious when your brain thinks you're unsafe.",
			"You deserve compassion, especially from yourself.",
			"Your feelings are valid, even when they feel overwhelming.",
			"You're not alone in feeling this way.",
		},
		Education: []string{
			"Anxiety is your nervous system's alarm system being extra sensitive.",
			"When you're anxious, your brain thinks there's danger everywhere.",
			"Your body can't tell the difference between real and imagined threats.",
			"Anxiety often comes from trying to control things outside our control.",
			"Your nervous system learned to be hypervigilant to keep you safe.",
			"Anxiety symptoms are your body preparing to fight, flee, or freeze.",
			"Your brain is trying to solve problems it can't actually solve.",
			"Worry is your brain's attempt to feel in control of uncertainty.",
			"Anxiety often shows up when we're doing something important to us.",
			"Your nervous system needs to learn that you're safe now.",
		},
		Hope: []string{
			"You can learn to work with your anxiety instead of against it.",
			"Your nervous system can learn to feel safe again.",
			"Healing is possible, even if it doesn't feel like it right now.",
			"You can teach your brain that you're safe in this moment.",
			"Recovery isn't about never feeling anxious again.",
			"You have more control over your anxiety than it feels like.",
			"Your anxiety doesn't define you or your worth.",
			"You can learn skills to manage your anxiety more effectively.",
			"Therapy can help you understand and work with your anxiety.",
			"You deserve support in learning to feel safe again.",
		},
	},
	Trauma: {
		Hooks: []string{
			"If you always need a backup plan for the backup plan, you're not 'dramatic.' You're traumatized.",
			"Hypervigilance isn't 'paranoia' — it's a survival skill you learned.",
			"If you feel guilty for taking up space, that's trauma talking.",
			"You're not too sensitive. You survived something that required sensitivity.",
			"If you scan every room for exits, you're not paranoid. You're traumatized.",
			"Fawning is a trauma response, not people-pleasing.",
			"If you feel like you're 'too much,' that's your trauma speaking.",
			"Your body keeps the score, even when your mind tries to forget.",
			"If you apologize for existing, that's trauma, not politeness.",
			"You're not overreacting. You're having a normal response to abnormal experiences.",
		},
		Validations: []string{
			"Your trauma responses made sense then and they make sense now.",
			"You survived something that changed how your brain works.",
			"Your hypervigilance kept you safe when you needed it most.",
			"It's not your fault that your nervous system learned to expect danger.",
			"Your trauma responses are proof of your strength, not weakness.",
			"You adapted to survive, and that adaptation served you.",
			"Your body remembers even when your mind wants to forget.",
			"You're not broken. You're a survivor with survivor skills.",
			"Your trauma responses are normal reactions to abnormal situations.",
			"You deserve healing, not judgment, for how trauma affected you.",
		},
		Education: []string{
			"Trauma changes how your brain processes safety and danger.",
			"Your nervous system learned to stay alert to keep you alive.",
			"Trauma responses happen in your body before your mind catches up.",
			"Your brain prioritizes survival over everything else after trauma.",
			"Trauma can make your nervous system stuck in survival mode.",
			"Your body learned that the world wasn't safe, so it stays ready.",
			"Trauma responses are automatic, not choices you're making.",
			"Your nervous system is trying to protect you from past dangers.",
			"Trauma can make your brain see threats that aren't really there.",
			"Your body holds trauma memories even when your mind blocks them.",
		},
		Hope: []string{
			"Your nervous system can learn to feel safe again.",
			"Trauma responses can be healed with the right support.",
			"You can teach your body that the danger has passed.",
			"Healing doesn't mean forgetting. It means integrating.",
			"You can learn to work with your trauma responses, not against them.",
			"Your nervous system can be rewired with patience and support.",
			"Trauma-informed therapy can help you reclaim your sense of safety.",
			"You deserve to feel safe in your own body again.",
			"Healing is possible, even from the deepest wounds.",
			"You can learn to trust yourself and others again.",
		},
	},
	Depression: {
		Hooks: []string{
			"You're not lazy. You're exhausted from fighting an invisible battle every day.",
			"Depression lies. It tells you this is forever.",
			"You're not a burden. You're a human being who deserves support.",
			"If you feel like you're drowning while everyone else is swimming, this is for you.",
			"You're not weak for struggling. You're strong for surviving.",
			"Depression isn't a choice. Recovery is.",
			"You matter, even when you don't feel like it.",
			"Getting out of bed is an achievement when your brain is telling you nothing matters.",
			"You're not failing at life. You're dealing with an illness.",
			"If you feel empty inside, that's depression, not your true self.",
		},
		Validations: []string{
			"Depression makes everything feel harder because it is harder.",
			"Your brain is sick, not your character.",
			"It's not your fault that your brain chemistry is struggling.",
			"You're not choosing to feel this way, and that's important to remember.",
			"Depression lies to you about your worth and your future.",
			"You're doing the best you can with a brain that's working against you.",
			"Small steps still count as progress when you're depressed.",
			"You're not alone, even when depression tells you that you are.",
			"Your depression doesn't define your worth as a person.",
			"It's okay to not be okay. You don't have to pretend to be fine.",
		},
		Education: []string{
			"Depression affects how your brain processes thoughts and emotions.",
			"Your brain chemistry is literally different when you're depressed.",
			"Depression makes everything feel more difficult because it is.",
			"Your brain is telling you lies about yourself and your future.",
			"Depression affects motivation, energy, and concentration.",
			"It's a medical condition, not a personal failing.",
			"Depression can make you feel disconnected from yourself and others.",
			"Your brain is stuck in patterns that keep you feeling low.",
			"Depression affects how you see yourself, others, and the future.",
			"It's like trying to run a marathon with a broken leg.",
		},
		Hope: []string{
			"Depression is treatable with the right support and treatment.",
			"Your brain can heal and form new, healthier patterns.",
			"You can feel better, even if it doesn't seem possible right now.",
			"Recovery is possible, and you deserve to experience it.",
			"Therapy can help you challenge the lies depression tells you.",
			"You can learn skills to manage your depression more effectively.",
			"Your depression doesn't have to be permanent.",
			"You can reconnect with yourself and others again.",
			"Small improvements can lead to bigger changes over time.",
			"You deserve support in your journey toward feeling better.",
		},
	},
	ADHD: {
		Hooks: []string{
			"If you've ever said 'I'll start in 5 minutes' and lost 3 hours, this is for you.",
			"ADHD brains don't lack focus. They focus on everything at once.",
			"You're not broken. Your brain just works differently.",
			"Time blindness is real and it's not your fault.",
			"If you have 20 unfinished projects, you might have ADHD.",
			"Your brain needs dopamine like a car needs gas.",
			"If you hyper-focus on random things but can't focus on important tasks, this is for you.",
			"ADHD isn't a deficit. It's a difference.",
			"Your brain is not lazy. It's just wired differently.",
			"If you feel like you're living life on hard mode, you might have ADHD.",
		},
		Validations: []string{
			"Your ADHD brain is not a broken neurotypical brain.",
			"You're not lazy, unmotivated, or careless. You have ADHD.",
			"Your struggles with focus and attention are real and valid.",
			"It's not your fault that your brain works differently.",
			"You're not making excuses. You're explaining your reality.",
			"Your ADHD symptoms are neurobiological, not character flaws.",
			"You're doing your best with a brain that needs different strategies.",
			"Your hyperfocus is a superpower, even when it feels inconvenient.",
			"You're not 'too much.' You're neurodivergent in a neurotypical world.",
			"Your ADHD traits can be strengths in the right environment.",
		},
		Education: []string{
			"ADHD brains have different levels of dopamine and norepinephrine.",
			"Your executive functions work differently, not worse.",
			"ADHD affects how you process time, attention, and motivation.",
			"Your brain seeks stimulation because it's understimulated.",
			"Working memory challenges are a core part of ADHD.",
			"Your brain prioritizes interesting over important tasks.",
			"ADHD affects emotional regulation, not just attention.",
			"Your brain needs more stimulation to feel motivated.",
			"Rejection sensitivity is a common but overlooked ADHD trait.",
			"Your brain is wired for creativity, innovation, and outside-the-box thinking.",
		},
		Hope: []string{
			"You can learn strategies that work with your ADHD brain, not against it.",
			"The right support can help you thrive with ADHD.",
			"Your ADHD traits can become strengths with the right approach.",
			"You can find systems and routines that actually work for you.",
			"Understanding your ADHD can be the key to unlocking your potential.",
			"You can learn to work with your brain's natural rhythms.",
			"ADHD-friendly strategies can make life so much easier.",
			"You can find your people who understand and appreciate your neurodivergence.",
			"Your ADHD brain has unique gifts that the world needs.",
			"You can create a life that works for your brain, not against it.",
		},
	},
}

// gentleCTAs close every post.
var gentleCTAs = []string{
	"Save this if your nervous system needed this today.",
	"Send this to a friend who needs to hear this.",
	"Share this with someone who feels alone in their struggle.",
	"Comment a 💙 if this resonated with you.",
	"DM me 'support' if this hit home.",
	"Tag someone who deserves this reminder.",
	"Save this for the days when you forget your worth.",
	"Share this if it made you feel less alone.",
	"Double-tap if you needed this reminder today.",
	"Comment 'same' if you relate to this.",
	"Send this to your past self who needed to hear it.",
	"Save this for when your brain lies to you.",
	"Share this with someone who's been struggling lately.",
	"Comment a heart if this speaks to you.",
	"DM me if you want to talk about this.",
	"Save this for your hard days.",
	"Share this with someone who needs hope today.",
	"Comment 'me' if this is your experience.",
	"Tag a friend who gets it.",
	"Save this reminder for when you need it most.",
}

// engagementStarters are question prompts; ___ is replaced with a niche term.
var engagementStarters = []string{
	"Fill in the blank: When I'm anxious, I feel like ___",
	"Raise your hand if you've ever ___",
	"Comment 'same' if you relate to ___",
	"What would you tell your younger self about ___?",
	"Share a time when you realized ___",
	"What's one thing you wish people understood about ___?",
	"Comment one word that describes how ___ feels",
	"What's the best advice you've received about ___?",
	"Share something you're learning to be gentle with yourself about",
	"What's one thing that's helped you with ___?",
}
